package dto

// LevelDrawQuery binds the generic level draw query string.
type LevelDrawQuery struct {
	Level    int    `form:"level" binding:"required,min=1,max=5"`
	Count    int    `form:"count" binding:"required,min=1,max=100"`
	Language string `form:"lang"`
}

type SessionQuery struct {
	Language string `form:"lang"`
}
