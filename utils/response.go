package utils

import "github.com/gin-gonic/gin"

func JSONSuccess(c *gin.Context, code int, data interface{}) {
	c.JSON(code, gin.H{"success": true, "data": data})
}

func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "message": message})
}

// RespondAppError maps an application error onto its HTTP status and a
// safe message body.
func RespondAppError(c *gin.Context, err error) {
	JSONError(c, HTTPStatus(err), PublicMessage(err))
}
