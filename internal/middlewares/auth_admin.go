package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/util"
)

// AuthorizeRoles lets the request through only for the listed roles.
func AuthorizeRoles(roles ...constants.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := util.GetUserRole(c)
		if role == "" {
			util.RespondJSON(c, http.StatusUnauthorized, constants.ErrMsgUnauthorized)
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		util.RespondJSON(c, http.StatusForbidden, constants.ErrMsgForbidden)
	}
}

func AuthorizeStaff() gin.HandlerFunc {
	return AuthorizeRoles(constants.RoleAdmin, constants.RoleStaff)
}

func AuthorizeAdmin() gin.HandlerFunc {
	return AuthorizeRoles(constants.RoleAdmin)
}
