package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"ShareServer/consts"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims JWT 载荷
type Claims struct {
	UserUUID string `json:"user_uuid"`
	jwt.RegisteredClaims
}

var (
	jwtSecret []byte
	jwtExpiry time.Duration
)

// InitJWT 初始化 JWT 参数（main 启动时调用一次）
func InitJWT(secret string, expiry time.Duration) {
	jwtSecret = []byte(secret)
	jwtExpiry = expiry
}

// GenerateToken 为用户签发 Token
func GenerateToken(userUUID string) (string, error) {
	if len(jwtSecret) == 0 {
		return "", errors.New("jwt secret not initialized")
	}
	now := time.Now()
	claims := Claims{
		UserUUID: userUUID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtExpiry)),
			Issuer:    "share-server",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret)
}

// ParseToken 解析并校验 Token
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserUUID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// JWTAuthMiddleware JWT 认证中间件。
// 从请求头提取 Token 并验证，通过后把 user_uuid 存入 Context。
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从 Header 中获取 Authorization
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// 客户端请求错误，属于正常业务流程，不记录日志
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    consts.CodeUnauthorized,
				"message": consts.GetMessage(consts.CodeUnauthorized),
			})
			c.Abort()
			return
		}

		// 2. 验证格式: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    consts.CodeInvalidToken,
				"message": consts.GetMessage(consts.CodeInvalidToken),
			})
			c.Abort()
			return
		}

		// 3. 解析并验证 Token
		claims, err := ParseToken(parts[1])
		if err != nil {
			code := int32(consts.CodeInvalidToken)
			if errors.Is(err, jwt.ErrTokenExpired) {
				code = consts.CodeTokenExpired
			}
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    code,
				"message": consts.GetMessage(code),
			})
			c.Abort()
			return
		}

		// 4. 将用户信息存入 Context，供后续 Handler 使用
		c.Set("user_uuid", claims.UserUUID)

		c.Next()
	}
}

// GetUserUUID 从 Context 中获取当前登录用户的 UUID
func GetUserUUID(c *gin.Context) (string, bool) {
	userUUID, exists := c.Get("user_uuid")
	if !exists {
		return "", false
	}
	uuid, ok := userUUID.(string)
	return uuid, ok
}
