package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	domain "github.com/capmatchph/capital-match-api/internal/domain/matching"
	"github.com/capmatchph/capital-match-api/internal/httperr"
	"github.com/capmatchph/capital-match-api/internal/httpresp"
	"github.com/capmatchph/capital-match-api/internal/matchcache"
	"github.com/capmatchph/capital-match-api/internal/middleware"
	"github.com/capmatchph/capital-match-api/internal/models"
	ucMatching "github.com/capmatchph/capital-match-api/internal/usecase/matching"
)

type MatchHandler struct {
	findUC *ucMatching.FindMatches
	cache  *matchcache.Cache
}

func NewMatchHandler(findUC *ucMatching.FindMatches, cache *matchcache.Cache) *MatchHandler {
	return &MatchHandler{findUC: findUC, cache: cache}
}

// FindMatches is a read-only list endpoint. Results are cached per
// filter set; pagination is left to the caller.
func (h *MatchHandler) FindMatches(c *gin.Context) {
	accountID := c.MustGet(middleware.ContextAccountID).(uint)

	filters := domain.Filters{
		Industry: c.Query("industry"),
		Location: c.Query("location"),
	}

	// Role gate runs before the cache so a forbidden caller never
	// sees cached results.
	role := c.MustGet(middleware.ContextRole).(string)
	if role != models.RoleSeeker && role != models.RoleAdmin {
		httperr.Forbidden(c, "matching_forbidden", "Only seekers and admins can search for matches.")
		return
	}

	key := fmt.Sprintf("matches:industry=%s|location=%s", filters.Industry, filters.Location)
	if cached, ok := h.cache.Get(c.Request.Context(), key); ok {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(cached))
		return
	}

	matches, err := h.findUC.Execute(c.Request.Context(), accountID, filters)
	if err != nil {
		httperr.WriteBusiness(c, err)
		return
	}

	out := make([]gin.H, 0, len(matches))
	for i := range matches {
		p := matches[i].Profile
		out = append(out, gin.H{
			"account_id":        p.AccountID,
			"company_name":      p.CompanyName,
			"service_types":     p.ServiceTypes,
			"geos_served":       p.GeosServed,
			"location":          p.Location,
			"subscription_tier": string(matches[i].Tier),
			"updated_at":        p.UpdatedAt,
		})
	}

	resp := httpresp.ListResponse[gin.H]{Data: out, Total: len(out)}

	if body, err := json.Marshal(resp); err == nil {
		h.cache.Set(c.Request.Context(), key, string(body))
	}

	c.JSON(http.StatusOK, resp)
}
