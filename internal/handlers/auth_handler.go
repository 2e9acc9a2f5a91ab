package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/capmatchph/capital-match-api/internal/audit"
	"github.com/capmatchph/capital-match-api/internal/config"
	"github.com/capmatchph/capital-match-api/internal/models"
	"github.com/capmatchph/capital-match-api/internal/notify"
	"github.com/capmatchph/capital-match-api/internal/validators"
)

type AuthHandler struct {
	db       *gorm.DB
	config   *config.Config
	recorder *audit.Recorder
	notifier notify.Notifier
}

func NewAuthHandler(
	db *gorm.DB,
	cfg *config.Config,
	recorder *audit.Recorder,
	notifier notify.Notifier,
) *AuthHandler {
	return &AuthHandler{
		db:       db,
		config:   cfg,
		recorder: recorder,
		notifier: notifier,
	}
}

// --------- Requests ---------

type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=6"`
	Role         string `json:"role" binding:"required,oneof=SEEKER PROVIDER"`
	CompanyName  string `json:"company_name"`
	ConsentGiven bool   `json:"consent_given"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

// Register creates the account and its matching profile variant in
// one transaction; there is no post-creation hook.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if !req.ConsentGiven {
		c.JSON(http.StatusBadRequest, gin.H{"error": "consent_required"})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if !validators.IsEmailDomainValid(email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_email_domain"})
		return
	}

	var count int64
	h.db.Model(&models.Account{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email_already_registered"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_hash_password"})
		return
	}

	account := models.Account{
		Email:        email,
		PasswordHash: string(hashed),
		Role:         req.Role,
		Active:       true,
		ConsentGiven: true,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&account).Error; err != nil {
			return err
		}

		switch account.Role {
		case models.RoleSeeker:
			return tx.Create(&models.SeekerProfile{
				AccountID:   account.ID,
				CompanyName: req.CompanyName,
			}).Error
		case models.RoleProvider:
			return tx.Create(&models.ProviderProfile{
				AccountID:        account.ID,
				CompanyName:      req.CompanyName,
				SubscriptionTier: "NONE",
			}).Error
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_create_account"})
		return
	}

	ip := c.ClientIP()
	target := &audit.Target{Type: "account", ID: strconv.FormatUint(uint64(account.ID), 10)}
	if _, err := h.recorder.Record(c.Request.Context(), &account.ID, audit.ActionUserRegistered, target, map[string]any{
		"email": account.Email,
		"role":  account.Role,
	}, &ip); err != nil {
		log.Printf("audit write failed for %s: %v", audit.ActionUserRegistered, err)
	}

	if err := h.notifier.UserRegistered(c.Request.Context(), &account); err != nil {
		log.Printf("notify failed for account %d: %v", account.ID, err)
	}

	token, err := h.generateToken(&account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"account": gin.H{
			"id":    account.ID,
			"email": account.Email,
			"role":  account.Role,
		},
		"token": token,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	ip := c.ClientIP()

	var account models.Account
	if err := h.db.Where("email = ?", email).First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			h.recordLoginFailed(c, email, ip)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		h.recordLoginFailed(c, email, ip)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}

	if !account.Active {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "account_inactive"})
		return
	}

	if _, err := h.recorder.Record(c.Request.Context(), &account.ID, audit.ActionUserLogin, nil, nil, &ip); err != nil {
		log.Printf("audit write failed for %s: %v", audit.ActionUserLogin, err)
	}

	token, err := h.generateToken(&account)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account": gin.H{
			"id":    account.ID,
			"email": account.Email,
			"role":  account.Role,
		},
		"token": token,
	})
}

// Failed logins are system-attributed: no actor, the attempted email
// goes in details only.
func (h *AuthHandler) recordLoginFailed(c *gin.Context, email, ip string) {
	if _, err := h.recorder.Record(c.Request.Context(), nil, audit.ActionUserLoginFailed, nil, map[string]any{
		"email": email,
	}, &ip); err != nil {
		log.Printf("audit write failed for %s: %v", audit.ActionUserLoginFailed, err)
	}
}

// --------- JWT ---------

func (h *AuthHandler) generateToken(account *models.Account) (string, error) {
	claims := jwt.MapClaims{
		"sub":  account.ID,
		"role": account.Role,
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}
