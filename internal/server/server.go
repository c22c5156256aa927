package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/pagemark/pkg/types"
)

// Server serves the PostgREST-compatible flag API.
type Server struct {
	store FlagStore
	log   *zap.Logger
}

// New returns a Server over the given store. A nil logger disables logging.
func New(store FlagStore, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{store: store, log: log}
}

// Router builds the gin engine. Table routes are registered both bare
// (what the extension client uses against loopback) and under /rest/v1/
// (so a client configured for hosted Supabase syntax also works).
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	for _, group := range []*gin.RouterGroup{&router.RouterGroup, router.Group("/rest/v1")} {
		group.GET("/"+TableContent, s.listContent)
		group.POST("/"+TableContent, s.createContent)
		group.DELETE("/"+TableContent, s.deleteContent)

		group.GET("/"+TableLinks, s.listLinks)
		group.POST("/"+TableLinks, s.createLinks)
		group.DELETE("/"+TableLinks, s.deleteLinks)
	}

	router.GET("/health", s.health)
	router.GET("/stats", s.stats)
	return router
}

// Table names served by the shim.
const (
	TableContent = "flagged_content"
	TableLinks   = "flagged_links"
)

// parseQuery reads the supported PostgREST operators: id=eq.X,
// page_url=eq.X, order=created_at.asc|desc.
func parseQuery(c *gin.Context) (Query, error) {
	var q Query
	if raw := c.Query("id"); raw != "" {
		value, ok := strings.CutPrefix(raw, "eq.")
		if !ok {
			return q, fmt.Errorf("unsupported id filter %q", raw)
		}
		q.ID = types.RecordID(value)
	}
	if raw := c.Query("page_url"); raw != "" {
		value, ok := strings.CutPrefix(raw, "eq.")
		if !ok {
			return q, fmt.Errorf("unsupported page_url filter %q", raw)
		}
		q.PageKey = value
		q.HasPage = true
	}
	switch order := c.Query("order"); order {
	case "", "created_at.asc":
	case "created_at.desc":
		q.OrderDesc = true
	default:
		return q, fmt.Errorf("unsupported order %q", order)
	}
	return q, nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
}

func (s *Server) storeError(c *gin.Context, op string, err error) {
	s.log.Error("store operation failed", zap.String("op", op), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"message": "storage failure"})
}

// wantRepresentation reports whether the client asked for the stored rows
// back (Prefer: return=representation).
func wantRepresentation(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Prefer"), "return=representation")
}

// decodeBatch reads a request body holding either a single JSON object or
// an array of them, PostgREST-style.
func decodeBatch[T any](body io.Reader) ([]T, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var batch []T
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, err
		}
		return batch, nil
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, err
	}
	return []T{one}, nil
}

// newRecordID assigns the shim's id scheme.
func newRecordID() types.RecordID {
	return types.RecordID(uuid.Must(uuid.NewV7()).String())
}

func (s *Server) listContent(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	rows, err := s.store.ListContent(c.Request.Context(), q)
	if err != nil {
		s.storeError(c, "list content", err)
		return
	}
	if rows == nil {
		rows = []types.FlagRecord{}
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) createContent(c *gin.Context) {
	batch, err := decodeBatch[types.FlagRecord](c.Request.Body)
	if err != nil {
		badRequest(c, fmt.Errorf("invalid body: %w", err))
		return
	}
	now := time.Now().UTC()
	for i := range batch {
		if batch[i].ID == "" {
			batch[i].ID = newRecordID()
		}
		if batch[i].CreatedAt.IsZero() {
			batch[i].CreatedAt = now
		}
		if err := s.store.InsertContent(c.Request.Context(), &batch[i]); err != nil {
			s.storeError(c, "insert content", err)
			return
		}
	}
	if wantRepresentation(c) {
		c.JSON(http.StatusCreated, batch)
		return
	}
	c.Status(http.StatusCreated)
}

// deleteContent removes rows matched by the id filter; with no filter at
// all it clears the table (how the seeder resets state). Other filters
// are rejected rather than silently widened to a full clear.
func (s *Server) deleteContent(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	if q.HasPage {
		badRequest(c, fmt.Errorf("delete supports only the id filter"))
		return
	}
	if q.ID == "" {
		if err := s.store.ClearContent(c.Request.Context()); err != nil {
			s.storeError(c, "clear content", err)
			return
		}
	} else if err := s.store.DeleteContent(c.Request.Context(), q.ID); err != nil {
		s.storeError(c, "delete content", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listLinks(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	rows, err := s.store.ListLink(c.Request.Context(), q)
	if err != nil {
		s.storeError(c, "list links", err)
		return
	}
	if rows == nil {
		rows = []types.LinkFlagRecord{}
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) createLinks(c *gin.Context) {
	batch, err := decodeBatch[types.LinkFlagRecord](c.Request.Body)
	if err != nil {
		badRequest(c, fmt.Errorf("invalid body: %w", err))
		return
	}
	now := time.Now().UTC()
	for i := range batch {
		if batch[i].ID == "" {
			batch[i].ID = newRecordID()
		}
		if batch[i].CreatedAt.IsZero() {
			batch[i].CreatedAt = now
		}
		if err := s.store.InsertLink(c.Request.Context(), &batch[i]); err != nil {
			s.storeError(c, "insert link", err)
			return
		}
	}
	if wantRepresentation(c) {
		c.JSON(http.StatusCreated, batch)
		return
	}
	c.Status(http.StatusCreated)
}

func (s *Server) deleteLinks(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	if q.HasPage {
		badRequest(c, fmt.Errorf("delete supports only the id filter"))
		return
	}
	if q.ID == "" {
		if err := s.store.ClearLink(c.Request.Context()); err != nil {
			s.storeError(c, "clear links", err)
			return
		}
	} else if err := s.store.DeleteLink(c.Request.Context(), q.ID); err != nil {
		s.storeError(c, "delete link", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) stats(c *gin.Context) {
	content, links, err := s.store.Counts(c.Request.Context())
	if err != nil {
		s.storeError(c, "counts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"flagged_content": content,
		"flagged_links":   links,
	})
}
