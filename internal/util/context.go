package util

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
)

// Keys set on the gin context by the auth middleware.
const (
	CtxUserID   = "ID"
	CtxUserName = "NAME"
	CtxUserRole = "ROLE"
)

func GetUserID(c *gin.Context) (uint, bool) {
	raw, ok := c.Get(CtxUserID)
	if !ok {
		return 0, false
	}
	id, ok := raw.(uint)
	return id, ok
}

func GetUserName(c *gin.Context) string {
	return c.GetString(CtxUserName)
}

func GetUserRole(c *gin.Context) constants.UserRole {
	raw, ok := c.Get(CtxUserRole)
	if !ok {
		return ""
	}
	role, _ := raw.(constants.UserRole)
	return role
}

// ParamID parses a positive numeric path parameter.
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
