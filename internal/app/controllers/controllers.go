package controllers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// currentUserID pulls the authenticated user's ID out of the gin context,
// where the JWT middleware placed it.
func currentUserID(ctx *gin.Context) (int64, bool) {
	value, exists := ctx.Get("userID")
	if !exists {
		return 0, false
	}
	userID, ok := value.(int64)
	return userID, ok
}

// pathID parses an int64 path parameter
func pathID(ctx *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}
