package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/capmatchph/capital-match-api/internal/audit"
	"github.com/capmatchph/capital-match-api/internal/middleware"
	"github.com/capmatchph/capital-match-api/internal/models"
)

type MeHandler struct {
	db       *gorm.DB
	recorder *audit.Recorder
}

func NewMeHandler(db *gorm.DB, recorder *audit.Recorder) *MeHandler {
	return &MeHandler{db: db, recorder: recorder}
}

// --------- Requests ---------

type UpdateSeekerProfileRequest struct {
	CompanyName *string `json:"company_name"`
	Industry    *string `json:"industry"`
	Location    *string `json:"location"`
}

type UpdateProviderProfileRequest struct {
	CompanyName  *string   `json:"company_name"`
	ServiceTypes *[]string `json:"service_types"`
	GeosServed   *[]string `json:"geos_served"`
	Location     *string   `json:"location"`
}

// --------- Handlers ---------

func (h *MeHandler) GetMe(c *gin.Context) {
	accountID := c.MustGet(middleware.ContextAccountID).(uint)

	var account models.Account
	if err := h.db.First(&account, accountID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "account_not_found"})
		return
	}

	resp := gin.H{"account": accountPayload(&account)}

	switch account.Role {
	case models.RoleSeeker:
		var p models.SeekerProfile
		if err := h.db.Where("account_id = ?", accountID).First(&p).Error; err == nil {
			resp["profile"] = seekerPayload(&p)
		}
	case models.RoleProvider:
		var p models.ProviderProfile
		if err := h.db.Where("account_id = ?", accountID).First(&p).Error; err == nil {
			resp["profile"] = providerPayload(&p)
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *MeHandler) GetProfile(c *gin.Context) {
	accountID := c.MustGet(middleware.ContextAccountID).(uint)
	role := c.MustGet(middleware.ContextRole).(string)

	switch role {
	case models.RoleSeeker:
		var p models.SeekerProfile
		if err := h.db.Where("account_id = ?", accountID).First(&p).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile_not_found"})
			return
		}
		c.JSON(http.StatusOK, seekerPayload(&p))
	case models.RoleProvider:
		var p models.ProviderProfile
		if err := h.db.Where("account_id = ?", accountID).First(&p).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile_not_found"})
			return
		}
		c.JSON(http.StatusOK, providerPayload(&p))
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "no_profile_for_role"})
	}
}

// UpdateProfile patches the caller's own profile variant. The
// subscription tier is not accepted here: only the entitlement ledger
// writes it.
func (h *MeHandler) UpdateProfile(c *gin.Context) {
	accountID := c.MustGet(middleware.ContextAccountID).(uint)
	role := c.MustGet(middleware.ContextRole).(string)

	switch role {
	case models.RoleSeeker:
		h.updateSeeker(c, accountID)
	case models.RoleProvider:
		h.updateProvider(c, accountID)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "no_profile_for_role"})
	}
}

func (h *MeHandler) updateSeeker(c *gin.Context, accountID uint) {
	var req UpdateSeekerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "details": err.Error()})
		return
	}

	var p models.SeekerProfile
	if err := h.db.Where("account_id = ?", accountID).First(&p).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile_not_found"})
		return
	}

	changed := map[string]any{}
	if req.CompanyName != nil {
		p.CompanyName = *req.CompanyName
		changed["company_name"] = *req.CompanyName
	}
	if req.Industry != nil {
		p.Industry = *req.Industry
		changed["industry"] = *req.Industry
	}
	if req.Location != nil {
		p.Location = *req.Location
		changed["location"] = *req.Location
	}

	if err := h.db.Save(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile_update_failed"})
		return
	}

	h.recordProfileUpdated(c, accountID, "seeker_profile", p.ID, changed)
	c.JSON(http.StatusOK, seekerPayload(&p))
}

func (h *MeHandler) updateProvider(c *gin.Context, accountID uint) {
	var req UpdateProviderProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request", "details": err.Error()})
		return
	}

	var p models.ProviderProfile
	if err := h.db.Where("account_id = ?", accountID).First(&p).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile_not_found"})
		return
	}

	changed := map[string]any{}
	if req.CompanyName != nil {
		p.CompanyName = *req.CompanyName
		changed["company_name"] = *req.CompanyName
	}
	if req.ServiceTypes != nil {
		p.ServiceTypes = *req.ServiceTypes
		changed["service_types"] = *req.ServiceTypes
	}
	if req.GeosServed != nil {
		p.GeosServed = *req.GeosServed
		changed["geos_served"] = *req.GeosServed
	}
	if req.Location != nil {
		p.Location = *req.Location
		changed["location"] = *req.Location
	}

	if err := h.db.Save(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile_update_failed"})
		return
	}

	h.recordProfileUpdated(c, accountID, "provider_profile", p.ID, changed)
	c.JSON(http.StatusOK, providerPayload(&p))
}

func (h *MeHandler) recordProfileUpdated(c *gin.Context, accountID uint, targetType string, profileID uint, changed map[string]any) {
	ip := c.ClientIP()
	target := &audit.Target{Type: targetType, ID: strconv.FormatUint(uint64(profileID), 10)}
	if _, err := h.recorder.Record(c.Request.Context(), &accountID, audit.ActionProfileUpdated, target, map[string]any{
		"changed": changed,
	}, &ip); err != nil {
		log.Printf("audit write failed for %s: %v", audit.ActionProfileUpdated, err)
	}
}
