package handler

type ContextKey string

var (
	TokenCtxKey ContextKey = "token"
	MyInfoCtx   ContextKey = "myInfo"
)
