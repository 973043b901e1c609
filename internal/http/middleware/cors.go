package middleware

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var defaultOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:3000",
	"http://127.0.0.1:5173",
}

// CORS allows the viewer and operator front ends. An empty list uses the local dev origins.
func CORS(origins []string) gin.HandlerFunc {
	allow := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			allow = append(allow, o)
		}
	}
	if len(allow) == 0 {
		allow = defaultOrigins
	}
	return cors.New(cors.Config{
		AllowOrigins:     allow,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Requested-With", HeaderRequestID, HeaderRunID},
		ExposeHeaders:    []string{HeaderRequestID, HeaderTraceID, HeaderRunID},
		AllowCredentials: true,
	})
}
