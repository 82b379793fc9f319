package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"docrepo/internal/access"
	"docrepo/internal/cache"
	"docrepo/internal/config"
	"docrepo/internal/model"
	"docrepo/internal/repository"
)

const searchKeyPrefix = "search:"

// SearchParams are the caller-supplied filters for a document search.
type SearchParams struct {
	Query           string
	Tags            []string
	UploaderID      string
	DepartmentID    string
	PermissionLevel string
	Page            int
	PageSize        int
	SortBy          string
	SortOrder       string
}

// SearchResult is one page of matching documents.
type SearchResult struct {
	Items      []model.Document `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

type SearchService interface {
	Search(ctx context.Context, p access.Principal, params SearchParams) (*SearchResult, error)
	TagFacet(ctx context.Context, p access.Principal) ([]string, error)
	UploaderFacet(ctx context.Context, p access.Principal) ([]model.Uploader, error)
}

type searchService struct {
	repo  repository.DocumentRepository
	cache cache.Cache
	cfg   config.SearchConfig
}

func NewSearchService(repo repository.DocumentRepository, c cache.Cache, cfg config.SearchConfig) SearchService {
	return &searchService{repo: repo, cache: c, cfg: cfg}
}

func scopeFor(p access.Principal) repository.Scope {
	return repository.Scope{Admin: p.IsAdmin(), UserID: p.ID, DepartmentID: p.DepartmentID}
}

func (s *searchService) Search(ctx context.Context, p access.Principal, params SearchParams) (*SearchResult, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	size := params.PageSize
	if size <= 0 {
		size = s.cfg.DefaultPageSize
	}
	if s.cfg.MaxPageSize > 0 && size > s.cfg.MaxPageSize {
		size = s.cfg.MaxPageSize
	}
	order := "desc"
	if strings.EqualFold(params.SortOrder, "asc") {
		order = "asc"
	}
	tags := normalizeTagNames(params.Tags)

	scope := scopeFor(p)
	key := searchCacheKey(scope, params, tags, page, size, order)
	if b, ok := s.cache.Get(ctx, key); ok {
		var res SearchResult
		if err := json.Unmarshal(b, &res); err == nil {
			return &res, nil
		}
	}

	pr, err := s.repo.Search(ctx, repository.SearchQuery{
		Scope:           scope,
		Query:           strings.TrimSpace(params.Query),
		Tags:            tags,
		UploaderID:      params.UploaderID,
		DepartmentID:    params.DepartmentID,
		PermissionLevel: params.PermissionLevel,
		SortBy:          params.SortBy,
		SortOrder:       order,
		Limit:           size,
		Offset:          (page - 1) * size,
	})
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if pr.Total > 0 {
		totalPages = (pr.Total + size - 1) / size
	}
	res := &SearchResult{
		Items:      pr.Items,
		Total:      pr.Total,
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
	}
	if b, err := json.Marshal(res); err == nil {
		s.cache.Set(ctx, key, b, time.Duration(s.cfg.CacheTTLSec)*time.Second)
	}
	return res, nil
}

func (s *searchService) TagFacet(ctx context.Context, p access.Principal) ([]string, error) {
	return s.repo.ListTagNames(ctx, scopeFor(p))
}

func (s *searchService) UploaderFacet(ctx context.Context, p access.Principal) ([]model.Uploader, error) {
	return s.repo.ListUploaders(ctx, scopeFor(p))
}

// searchCacheKey embeds the caller's visibility scope so a cached page is
// never served to a principal with different access.
func searchCacheKey(scope repository.Scope, params SearchParams, tags []string, page, size int, order string) string {
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)
	who := "admin"
	if !scope.Admin {
		dept := ""
		if scope.DepartmentID != nil {
			dept = *scope.DepartmentID
		}
		who = scope.UserID + "@" + dept
	}
	return fmt.Sprintf("%s%s:%s:%s:%s:%s:%s:%s:%s:%d:%d",
		searchKeyPrefix, who, strings.TrimSpace(params.Query), strings.Join(sorted, ","),
		params.UploaderID, params.DepartmentID, params.PermissionLevel,
		params.SortBy, order, page, size)
}
