// Package handler wires HTTP endpoints to the service layer.
package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dadosgov/cnpq-api/internal/query"
	"github.com/dadosgov/cnpq-api/internal/service"
	appErrors "github.com/dadosgov/cnpq-api/pkg/errors"
)

// reservedParams are query keys consumed by pagination, sorting and
// export; everything else feeds the filter engine.
var reservedParams = map[string]struct{}{
	"page":       {},
	"size":       {},
	"sort_by":    {},
	"sort_order": {},
	"format":     {},
}

// listParams splits the request query string into dynamic filters and a
// page request. Repeated keys keep their first value.
func listParams(c *gin.Context) (query.Filters, query.PageRequest) {
	filters := query.Filters{}
	for key, values := range c.Request.URL.Query() {
		if _, reserved := reservedParams[key]; reserved {
			continue
		}
		if len(values) > 0 {
			filters[key] = values[0]
		}
	}

	req := query.PageRequest{
		Page:      intQuery(c, "page"),
		Size:      intQuery(c, "size"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	return filters, req
}

// filterParams returns only the dynamic filters, for export endpoints.
func filterParams(c *gin.Context) query.Filters {
	filters, _ := listParams(c)
	return filters
}

func intQuery(c *gin.Context, key string) int {
	raw := c.Query(key)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

// serveExport writes a rendered document as an attachment download.
func serveExport(c *gin.Context, name string, format service.ExportFormat, payload []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, name, format))
	c.Data(http.StatusOK, format.ContentType(), payload)
}

// pathID parses the :id route parameter.
func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid id")
	}
	return id, nil
}
