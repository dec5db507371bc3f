package controllers

import (
	"net/http"
	"time"

	"github.com/ChurchPortal/guards"
	"github.com/ChurchPortal/initializers"
	"github.com/ChurchPortal/models"
	"github.com/ChurchPortal/utils"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const teamFolder = "team"

func fetchTeam(c *gin.Context) ([]models.TeamMember, error) {
	team := []models.TeamMember{}
	err := initializers.DB.From("team_members").
		Order(goqu.C("created_at").Asc()).
		ScanStructsContext(c.Request.Context(), &team)
	return team, err
}

func GetTeamMembers(c *gin.Context) {
	team, err := fetchTeam(c)
	if err != nil {
		zap.S().Errorf("failed to fetch team members: %v", err)
		team = []models.TeamMember{}
	}

	c.JSON(http.StatusOK, team)
}

// GetLeaderBio finds a team member by the slug of their name. Unknown slugs
// point the app back at the about page.
func GetLeaderBio(c *gin.Context) {
	slug := utils.Slugify(c.Param("slug"))

	team, err := fetchTeam(c)
	if err != nil {
		zap.S().Errorf("failed to fetch team members for %s: %v", slug, err)
	}

	member, found := lo.Find(team, func(m models.TeamMember) bool {
		return utils.Slugify(m.Name) == slug
	})
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Leader not found", "redirect": guards.AboutPath})
		return
	}

	c.JSON(http.StatusOK, gin.H{"member": member, "slug": slug})
}

func CreateTeamMember(c *gin.Context) {
	var form models.TeamMemberForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team member", "details": err.Error()})
		return
	}

	imgURL, err := uploadFile(c, "image", teamFolder)
	if err != nil {
		respondUploadError(c, err)
		return
	}

	member := models.TeamMember{
		Name:        form.Name,
		Role:        form.Role,
		Email:       form.Email,
		Phone:       form.Phone,
		Img:         lo.Ternary(imgURL != "", imgURL, form.Img),
		Description: form.Description,
	}

	var created models.TeamMember
	_, err = initializers.DB.Insert("team_members").
		Rows(member).
		Returning(goqu.Star()).
		Executor().
		ScanStructContext(c.Request.Context(), &created)
	if err != nil {
		zap.S().Errorf("failed to create team member: %v", err)
		removeStoredObject(c, imgURL)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create team member"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func UpdateTeamMember(c *gin.Context) {
	memberID, ok := parseID(c, "member_id")
	if !ok {
		return
	}

	var form models.TeamMemberForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid team member", "details": err.Error()})
		return
	}

	imgURL, err := uploadFile(c, "image", teamFolder)
	if err != nil {
		respondUploadError(c, err)
		return
	}

	record := goqu.Record{
		"name":        form.Name,
		"role":        form.Role,
		"email":       form.Email,
		"phone":       form.Phone,
		"description": form.Description,
		"updated_at":  time.Now(),
	}
	if img := lo.Ternary(imgURL != "", imgURL, form.Img); img != "" {
		record["img"] = img
	}

	result, err := initializers.DB.Update("team_members").
		Set(record).
		Where(goqu.C("id").Eq(memberID)).
		Executor().
		ExecContext(c.Request.Context())
	if err != nil {
		zap.S().Errorf("failed to update team member %s: %v", memberID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update team member"})
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Team member not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Team member updated"})
}

func DeleteTeamMember(c *gin.Context) {
	memberID, ok := parseID(c, "member_id")
	if !ok {
		return
	}

	var imgURL string
	found, err := initializers.DB.Delete("team_members").
		Where(goqu.C("id").Eq(memberID)).
		Returning("img").
		Executor().
		ScanValContext(c.Request.Context(), &imgURL)
	if err != nil {
		zap.S().Errorf("failed to delete team member %s: %v", memberID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete team member"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Team member not found"})
		return
	}

	removeStoredObject(c, imgURL)
	c.JSON(http.StatusOK, gin.H{"message": "Team member deleted"})
}
