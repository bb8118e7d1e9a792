package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/example/velora/internal/models"
)

// CategoryService maintains the category taxonomy: cycle-safe parent
// reassignment, tree building, breadcrumbs and sibling ordering.
type CategoryService struct {
	categories CategoryStore
}

// NewCategoryService constructs CategoryService.
func NewCategoryService(categories CategoryStore) *CategoryService {
	return &CategoryService{categories: categories}
}

// CategoryNode is a category with its derived children, sorted by
// (sort order, name).
type CategoryNode struct {
	models.Category
	Children []*CategoryNode `json:"children"`
}

// Crumb is one step of a root-to-node breadcrumb trail.
type Crumb struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// CreateCategoryInput carries the fields for a new category.
type CreateCategoryInput struct {
	Name        string
	Slug        string
	Description string
	ParentID    *uuid.UUID
	SortOrder   *int
	IsActive    bool
	Published   bool
}

// Create persists a new category. A nil sort order defaults to the next
// position after existing siblings.
func (s *CategoryService) Create(ctx context.Context, input CreateCategoryInput) (*models.Category, error) {
	var details []string
	if strings.TrimSpace(input.Name) == "" {
		details = append(details, "name is required")
	}
	if strings.TrimSpace(input.Slug) == "" {
		details = append(details, "slug is required")
	}
	if len(details) > 0 {
		return nil, &Error{Kind: KindValidationFailed, Message: "invalid category", Details: details}
	}

	if input.ParentID != nil {
		if _, err := s.getCategory(ctx, *input.ParentID); err != nil {
			return nil, err
		}
	}

	sortOrder := input.SortOrder
	if sortOrder == nil {
		next, err := s.NextSortOrder(ctx, input.ParentID)
		if err != nil {
			return nil, err
		}
		sortOrder = &next
	}

	category := &models.Category{
		Name:        input.Name,
		Slug:        input.Slug,
		Description: input.Description,
		ParentID:    input.ParentID,
		SortOrder:   sortOrder,
		IsActive:    input.IsActive,
		Published:   input.Published,
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// Reparent moves a category under a new parent (or to the root for nil)
// after validating the cycle invariant.
func (s *CategoryService) Reparent(ctx context.Context, id uuid.UUID, newParentID *uuid.UUID) (*models.Category, error) {
	category, err := s.getCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if newParentID != nil {
		if _, err := s.getCategory(ctx, *newParentID); err != nil {
			return nil, err
		}
		circular, err := s.CheckCircularReference(ctx, *newParentID, id)
		if err != nil {
			return nil, err
		}
		if circular {
			return nil, E(KindCircularReference, "category %s cannot become a descendant of itself", id)
		}
	}

	category.ParentID = newParentID
	if err := s.categories.Save(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

// CheckCircularReference walks upward from candidateParentID and reports
// whether nodeID is encountered. Self-reference is always circular. A visited
// set guards against pre-existing corruption in the parent chain.
func (s *CategoryService) CheckCircularReference(ctx context.Context, candidateParentID, nodeID uuid.UUID) (bool, error) {
	if candidateParentID == nodeID {
		return true, nil
	}

	visited := map[uuid.UUID]bool{}
	current := candidateParentID
	for {
		if current == nodeID {
			return true, nil
		}
		if visited[current] {
			return false, nil
		}
		visited[current] = true

		category, err := s.categories.Get(ctx, current)
		if err != nil {
			if errors.Is(err, ErrRecordMissing) {
				return false, nil
			}
			return false, err
		}
		if category.ParentID == nil {
			return false, nil
		}
		current = *category.ParentID
	}
}

// Tree loads all published categories in one pass and assembles the sorted
// hierarchy. Nodes whose parent is missing or unpublished surface at the
// root; a visited set keeps corrupted data from recursing forever.
func (s *CategoryService) Tree(ctx context.Context) ([]*CategoryNode, error) {
	categories, err := s.categories.ListPublished(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[uuid.UUID]*CategoryNode, len(categories))
	for i := range categories {
		index[categories[i].ID] = &CategoryNode{Category: categories[i], Children: []*CategoryNode{}}
	}

	var roots []*CategoryNode
	for _, node := range index {
		if node.ParentID != nil {
			if parent, ok := index[*node.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	visited := map[uuid.UUID]bool{}
	sortLevel(roots, visited)

	return roots, nil
}

func sortLevel(nodes []*CategoryNode, visited map[uuid.UUID]bool) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].SortKey() != nodes[j].SortKey() {
			return nodes[i].SortKey() < nodes[j].SortKey()
		}
		return nodes[i].Name < nodes[j].Name
	})
	for _, node := range nodes {
		if visited[node.ID] {
			continue
		}
		visited[node.ID] = true
		sortLevel(node.Children, visited)
	}
}

// Breadcrumbs walks from the category to the root and returns the trail in
// root-to-leaf order. An unknown starting ID yields an empty trail, not an
// error.
func (s *CategoryService) Breadcrumbs(ctx context.Context, id uuid.UUID) ([]Crumb, error) {
	var crumbs []Crumb
	visited := map[uuid.UUID]bool{}

	current := id
	for {
		if visited[current] {
			break
		}
		visited[current] = true

		category, err := s.categories.Get(ctx, current)
		if err != nil {
			if errors.Is(err, ErrRecordMissing) {
				break
			}
			return nil, err
		}

		crumbs = append([]Crumb{{ID: category.ID, Name: category.Name, Slug: category.Slug}}, crumbs...)
		if category.ParentID == nil {
			break
		}
		current = *category.ParentID
	}

	return crumbs, nil
}

// Path returns the breadcrumb slugs joined by "/".
func (s *CategoryService) Path(ctx context.Context, id uuid.UUID) (string, error) {
	crumbs, err := s.Breadcrumbs(ctx, id)
	if err != nil {
		return "", err
	}
	slugs := make([]string, 0, len(crumbs))
	for _, crumb := range crumbs {
		slugs = append(slugs, crumb.Slug)
	}
	return strings.Join(slugs, "/"), nil
}

// Descendants collects all transitive children breadth-first. Leaf nodes
// yield an empty result.
func (s *CategoryService) Descendants(ctx context.Context, id uuid.UUID) ([]models.Category, error) {
	var result []models.Category
	visited := map[uuid.UUID]bool{id: true}

	queue := []uuid.UUID{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		parentID := current
		children, err := s.categories.ListByParent(ctx, &parentID)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			result = append(result, child)
			queue = append(queue, child.ID)
		}
	}

	return result, nil
}

// NextSortOrder returns one past the highest sibling sort order, or 0 when
// there are no siblings. The value is advisory; uniqueness is not enforced.
func (s *CategoryService) NextSortOrder(ctx context.Context, parentID *uuid.UUID) (int, error) {
	siblings, err := s.categories.ListByParent(ctx, parentID)
	if err != nil {
		return 0, err
	}
	if len(siblings) == 0 {
		return 0, nil
	}

	max := 0
	for i := range siblings {
		if key := siblings[i].SortKey(); key > max {
			max = key
		}
	}
	return max + 1, nil
}

func (s *CategoryService) getCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category, err := s.categories.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordMissing) {
			return nil, E(KindNotFound, "category not found")
		}
		return nil, err
	}
	return category, nil
}
