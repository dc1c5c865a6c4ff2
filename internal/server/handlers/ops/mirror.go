package ops

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"olp/backend/pkg/ginx"
)

// MirrorSales handles GET /ops/mirror/sales?page=1&limit=50.
func (h *Handler) MirrorSales(c *gin.Context) {
	page, limit := pageParams(c)

	sales, total, err := h.mirror.ListSales(c.Request.Context(), page, limit)
	if err != nil {
		ginx.InternalError(c, err.Error())
		return
	}

	ginx.Success(c, gin.H{"sales": sales, "total": total, "page": page, "limit": limit})
}

// MirrorContacts handles GET /ops/mirror/contacts?page=1&limit=50.
func (h *Handler) MirrorContacts(c *gin.Context) {
	page, limit := pageParams(c)

	contacts, total, err := h.mirror.ListContacts(c.Request.Context(), page, limit)
	if err != nil {
		ginx.InternalError(c, err.Error())
		return
	}

	ginx.Success(c, gin.H{"contacts": contacts, "total": total, "page": page, "limit": limit})
}

// MirrorAccounts handles GET /ops/mirror/accounts.
func (h *Handler) MirrorAccounts(c *gin.Context) {
	accounts, err := h.mirror.ListAccounts(c.Request.Context())
	if err != nil {
		ginx.InternalError(c, err.Error())
		return
	}

	ginx.Success(c, gin.H{"accounts": accounts})
}

func pageParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return page, limit
}
