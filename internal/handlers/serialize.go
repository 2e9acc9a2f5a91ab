package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/capmatchph/capital-match-api/internal/models"
)

// Profile serialization is a tagged union over the two variants,
// dispatched once on the account role. Exactly one branch applies per
// account.

func seekerPayload(p *models.SeekerProfile) gin.H {
	return gin.H{
		"id":           p.ID,
		"account_id":   p.AccountID,
		"company_name": p.CompanyName,
		"industry":     p.Industry,
		"location":     p.Location,
		"updated_at":   p.UpdatedAt,
	}
}

func providerPayload(p *models.ProviderProfile) gin.H {
	return gin.H{
		"id":                p.ID,
		"account_id":        p.AccountID,
		"company_name":      p.CompanyName,
		"service_types":     p.ServiceTypes,
		"geos_served":       p.GeosServed,
		"location":          p.Location,
		"subscription_tier": p.SubscriptionTier,
		"updated_at":        p.UpdatedAt,
	}
}

func accountPayload(a *models.Account) gin.H {
	return gin.H{
		"id":     a.ID,
		"email":  a.Email,
		"role":   a.Role,
		"active": a.Active,
	}
}

// formatMinor renders integer minor units as display decimal. This is
// the only place amounts leave minor units.
func formatMinor(amountMinor int64) string {
	sign := ""
	if amountMinor < 0 {
		sign = "-"
		amountMinor = -amountMinor
	}
	return fmt.Sprintf("%s%d.%02d", sign, amountMinor/100, amountMinor%100)
}
