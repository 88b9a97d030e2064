package middlewares

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ZhaoZeLuWei/HelpMe/configs"
	"github.com/ZhaoZeLuWei/HelpMe/configs/constants"
	"github.com/ZhaoZeLuWei/HelpMe/internal/model/db"
	"github.com/ZhaoZeLuWei/HelpMe/internal/util"
)

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		tokenParts := strings.SplitN(authHeader, " ", 2)
		if len(tokenParts) == 2 && strings.EqualFold(tokenParts[0], "bearer") {
			return strings.TrimSpace(tokenParts[1])
		}
		return ""
	}

	// browsers cannot set headers on a websocket handshake
	if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
		return c.Query("token")
	}
	return ""
}

func setIdentity(c *gin.Context, claims *util.TokenClaims) {
	c.Set(util.CtxUserID, claims.UserID)
	c.Set(util.CtxUserName, claims.Name)
	c.Set(util.CtxUserRole, claims.Role)
}

// JWTMiddleware rejects requests without a valid token. A user token that
// expired within the grace period is accepted and a fresh one is returned in
// the Authorization response header.
func JWTMiddleware(cfg *configs.TokenJWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		tokenString := extractToken(c)
		if tokenString == "" {
			util.RespondJSON(c, http.StatusUnauthorized, constants.ErrMsgUnauthorized)
			return
		}

		claims, err := util.ParseJWTToken(cfg, tokenString)
		switch {
		case err == nil:
			setIdentity(c, claims)
			c.Next()

		case err == util.ErrTokenExpired:
			if claims.Role != constants.RoleUser || time.Since(claims.ExpiresAt) > cfg.GracePeriod {
				util.RespondJSON(c, http.StatusUnauthorized, constants.ErrMsgTokenExpired)
				return
			}

			newToken, err := util.GenerateUserToken(cfg, claims.UserID, claims.Name)
			if err != nil {
				util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
				return
			}
			c.Header("Authorization", "Bearer "+newToken)
			setIdentity(c, claims)
			c.Next()

		default:
			util.RespondJSON(c, http.StatusUnauthorized, constants.ErrMsgTokenExpired)
		}
	}
}

// OptionalJWT attaches the caller when a valid token is present and never
// rejects the request.
func OptionalJWT(cfg *configs.TokenJWT) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := extractToken(c); tokenString != "" {
			if claims, err := util.ParseJWTToken(cfg, tokenString); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

// Authorize checks the token subject still exists.
func Authorize(dbConn *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := util.GetUserID(c)
		if !ok {
			util.RespondJSON(c, http.StatusUnauthorized, constants.ErrMsgUnauthorized)
			return
		}

		role := util.GetUserRole(c)
		var err error
		if role.IsStaff() {
			var staff db.Staff
			err = dbConn.Select("id", "user_name", "role").First(&staff, userID).Error
			if err == nil {
				c.Set(util.CtxUserName, staff.UserName)
				c.Set(util.CtxUserRole, staff.Role)
			}
		} else {
			var user db.User
			err = dbConn.Select("id", "user_name").First(&user, userID).Error
			if err == nil {
				c.Set(util.CtxUserName, user.UserName)
			}
		}

		if err != nil {
			if util.IsNotFound(err) {
				util.RespondJSON(c, http.StatusUnauthorized, constants.ErrMsgUnauthorized)
				return
			}
			util.RespondJSON(c, http.StatusInternalServerError, constants.ErrMsgInternalServerError)
			return
		}
		c.Next()
	}
}

// RequireMultipart answers 415 for anything but multipart/form-data.
func RequireMultipart() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(strings.ToLower(c.GetHeader("Content-Type")), "multipart/form-data") {
			util.RespondJSON(c, http.StatusUnsupportedMediaType, constants.ErrMsgMultipartRequired)
			return
		}
		c.Next()
	}
}
