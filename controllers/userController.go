package controllers

import (
	"net/http"
	"time"

	"github.com/ChurchPortal/initializers"
	"github.com/ChurchPortal/models"
	"github.com/ChurchPortal/services"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func GetUsers(c *gin.Context) {
	users := []models.User{}

	err := initializers.DB.From("users").
		Order(goqu.C("created_at").Desc()).
		ScanStructsContext(c.Request.Context(), &users)
	if err != nil {
		zap.S().Errorf("failed to fetch users: %v", err)
		users = []models.User{}
	}

	c.JSON(http.StatusOK, users)
}

func GetPendingUsers(c *gin.Context) {
	users := []models.User{}

	err := initializers.DB.From("users").
		Where(goqu.C("is_approved").IsFalse()).
		Order(goqu.C("created_at").Desc()).
		ScanStructsContext(c.Request.Context(), &users)
	if err != nil {
		zap.S().Errorf("failed to fetch pending users: %v", err)
		users = []models.User{}
	}

	c.JSON(http.StatusOK, users)
}

// ApproveUser flips is_approved in a single update and emails the member.
func ApproveUser(c *gin.Context) {
	userID := c.Param("user_id")

	var user models.User
	found, err := initializers.DB.Update("users").
		Set(goqu.Record{"is_approved": true}).
		Where(goqu.C("id").Eq(userID)).
		Returning(goqu.Star()).
		Executor().
		ScanStructContext(c.Request.Context(), &user)
	if err != nil {
		zap.S().Errorf("failed to approve user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve user"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if user.Email != "" {
		go func(email, name string) {
			if err := services.GetEmailService().SendApprovalEmail(email, name); err != nil {
				zap.S().Warnf("approval email for %s not sent: %v", userID, err)
			}
		}(user.Email, user.Name)
	}

	c.JSON(http.StatusOK, gin.H{"message": "User approved", "user": user})
}

// RejectUser removes a pending account. Rejecting an account that is already
// gone succeeds.
// RejectUser deletes a pending sign-up. Approved members are revoked, not
// rejected, so the delete never touches them.
func RejectUser(c *gin.Context) {
	userID := c.Param("user_id")
	ctx := c.Request.Context()

	result, err := initializers.DB.Delete("users").
		Where(
			goqu.C("id").Eq(userID),
			goqu.C("is_approved").IsFalse(),
		).
		Executor().
		ExecContext(ctx)
	if err != nil {
		zap.S().Errorf("failed to reject user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject user"})
		return
	}

	if rows, _ := result.RowsAffected(); rows > 0 {
		c.JSON(http.StatusOK, gin.H{"message": "User rejected"})
		return
	}

	remaining, err := initializers.DB.From("users").
		Where(goqu.C("id").Eq(userID)).
		CountContext(ctx)
	if err != nil {
		zap.S().Errorf("failed to check rejected user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject user"})
		return
	}
	if remaining > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Only pending users can be rejected. Revoke access instead."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User already removed"})
}

func ChangeUserRole(c *gin.Context) {
	userID := c.Param("user_id")

	var form models.UserRoleUpdate
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be member or admin", "details": err.Error()})
		return
	}

	updateUser(c, userID, goqu.Record{"role": form.Role}, "Role updated")
}

// RevokeUserAccess sends an approved member back to the pending state.
func RevokeUserAccess(c *gin.Context) {
	updateUser(c, c.Param("user_id"), goqu.Record{"is_approved": false}, "Access revoked")
}

func UpdateMyTimezone(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	var form models.UserTimezoneUpdate
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Timezone is required", "details": err.Error()})
		return
	}
	if _, err := time.LoadLocation(form.UserTimezone); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown timezone", "details": err.Error()})
		return
	}

	updateUser(c, user.ID, goqu.Record{"user_timezone": form.UserTimezone}, "Timezone updated")
}

func updateUser(c *gin.Context, userID string, record goqu.Record, message string) {
	result, err := initializers.DB.Update("users").
		Set(record).
		Where(goqu.C("id").Eq(userID)).
		Executor().
		ExecContext(c.Request.Context())
	if err != nil {
		zap.S().Errorf("failed to update user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}
