package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/model"
	"irufoodflow/backend/internal/repository"
	"irufoodflow/backend/pkg/events"
)

var (
	ErrRecipeNotFound         = errors.New("食谱不存在")
	ErrRecipeNoIngredients    = errors.New("食谱至少需要一种配料")
	ErrRecipeInvalidQuantity  = errors.New("配料用量必须大于 0")
	ErrRecipeUnitIncompatible = errors.New("配料单位与商品单位不兼容")
)

// RecipeService 食谱业务接口
type RecipeService interface {
	Create(ctx context.Context, req *dto.RecipeRequest, callerID string) (*dto.RecipeResponse, error)
	GetByID(ctx context.Context, id, callerID, callerRole string) (*dto.RecipeResponse, error)
	List(ctx context.Context, req *dto.RecipeListRequest, callerID, callerRole string) ([]dto.RecipeResponse, error)
	Update(ctx context.Context, id string, req *dto.RecipeRequest, callerID, callerRole string) (*dto.RecipeResponse, error)
	Delete(ctx context.Context, id, callerID, callerRole string) error
	// AddToList 按份数展开配料并写入（或合并进）该课程该周的待审批清单
	AddToList(ctx context.Context, id string, req *dto.AddToListRequest, callerID, callerRole string) (*dto.AddToListResponse, error)
}

type recipeService struct {
	repo      *repository.Repository
	publisher events.Publisher
	logger    *zap.Logger
}

// NewRecipeService 创建 RecipeService 实例
func NewRecipeService(repo *repository.Repository, publisher events.Publisher, logger *zap.Logger) RecipeService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &recipeService{repo: repo, publisher: publisher, logger: logger}
}

// ────────────────────── CRUD ──────────────────────

func (s *recipeService) Create(ctx context.Context, req *dto.RecipeRequest, callerID string) (*dto.RecipeResponse, error) {
	ingredients, err := s.buildIngredients(ctx, req.Ingredients)
	if err != nil {
		return nil, err
	}

	recipe := &model.Recipe{
		OwnerID:     callerID,
		Name:        strings.TrimSpace(req.Name),
		Category:    strings.TrimSpace(req.Category),
		Portions:    portionsOrDefault(req.Portions),
		Preparation: req.Preparation,
		Ingredients: ingredients,
	}
	recipe.CreatedBy = &callerID

	if err := s.repo.Recipe.Create(ctx, recipe); err != nil {
		s.logger.Error("创建食谱失败", zap.Error(err))
		return nil, err
	}
	return s.reload(ctx, recipe.RecipeID)
}

// buildIngredients 校验配料：商品存在、用量为正、单位可换算到商品单位
func (s *recipeService) buildIngredients(ctx context.Context, reqs []dto.IngredientRequest) ([]model.RecipeIngredient, error) {
	if len(reqs) == 0 {
		return nil, ErrRecipeNoIngredients
	}

	ids := make([]string, 0, len(reqs))
	for _, r := range reqs {
		ids = append(ids, r.ProductID)
	}
	products, err := s.repo.Product.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("查询商品失败", zap.Error(err))
		return nil, err
	}
	byID := make(map[string]*model.Product, len(products))
	for i := range products {
		byID[products[i].ProductID] = &products[i]
	}

	result := make([]model.RecipeIngredient, 0, len(reqs))
	for i, r := range reqs {
		p, ok := byID[r.ProductID]
		if !ok {
			return nil, ErrProductNotFound
		}
		if !r.Quantity.IsPositive() || !model.QuantityFits(r.Quantity) {
			return nil, fmt.Errorf("%w: %s", ErrRecipeInvalidQuantity, p.Name)
		}
		unit := model.NormalizeUnit(r.Unit)
		if unit == "" {
			return nil, fmt.Errorf("%w: %s", ErrProductInvalidUnit, r.Unit)
		}
		if _, ok := model.ConvertQuantity(decimal.NewFromInt(1), unit, p.Unit); !ok {
			return nil, fmt.Errorf("%w: %s (%s → %s)", ErrRecipeUnitIncompatible, p.Name, unit, p.Unit)
		}
		result = append(result, model.RecipeIngredient{
			ProductID: p.ProductID,
			Quantity:  r.Quantity,
			Unit:      unit,
			SortOrder: i,
		})
	}
	return result, nil
}

func (s *recipeService) getRecipe(ctx context.Context, id string) (*model.Recipe, error) {
	recipe, err := s.repo.Recipe.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecipeNotFound
		}
		s.logger.Error("查询食谱失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return recipe, nil
}

// getVisible 教师只能访问自己的食谱
func (s *recipeService) getVisible(ctx context.Context, id, callerID, callerRole string) (*model.Recipe, error) {
	recipe, err := s.getRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isPrivileged(callerRole) && recipe.OwnerID != callerID {
		return nil, ErrNoPermission
	}
	return recipe, nil
}

func (s *recipeService) reload(ctx context.Context, id string) (*dto.RecipeResponse, error) {
	recipe, err := s.getRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toRecipeResponse(recipe)
	return &resp, nil
}

func (s *recipeService) GetByID(ctx context.Context, id, callerID, callerRole string) (*dto.RecipeResponse, error) {
	recipe, err := s.getVisible(ctx, id, callerID, callerRole)
	if err != nil {
		return nil, err
	}
	resp := toRecipeResponse(recipe)
	return &resp, nil
}

func (s *recipeService) List(ctx context.Context, req *dto.RecipeListRequest, callerID, callerRole string) ([]dto.RecipeResponse, error) {
	ownerID := callerID
	if isPrivileged(callerRole) {
		ownerID = ""
	}
	recipes, err := s.repo.Recipe.List(ctx, ownerID, req.Keyword)
	if err != nil {
		s.logger.Error("列出食谱失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		result = append(result, toRecipeResponse(&recipes[i]))
	}
	return result, nil
}

func (s *recipeService) Update(ctx context.Context, id string, req *dto.RecipeRequest, callerID, callerRole string) (*dto.RecipeResponse, error) {
	recipe, err := s.getRecipe(ctx, id)
	if err != nil {
		return nil, err
	}
	if recipe.OwnerID != callerID && callerRole != model.RoleAdmin {
		return nil, ErrNoPermission
	}

	ingredients, err := s.buildIngredients(ctx, req.Ingredients)
	if err != nil {
		return nil, err
	}

	recipe.Name = strings.TrimSpace(req.Name)
	recipe.Category = strings.TrimSpace(req.Category)
	recipe.Portions = portionsOrDefault(req.Portions)
	recipe.Preparation = req.Preparation
	recipe.Ingredients = ingredients
	recipe.UpdatedBy = &callerID

	if err := s.repo.Recipe.Update(ctx, recipe); err != nil {
		s.logger.Error("更新食谱失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.reload(ctx, id)
}

func (s *recipeService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	recipe, err := s.getRecipe(ctx, id)
	if err != nil {
		return err
	}
	if recipe.OwnerID != callerID && callerRole != model.RoleAdmin {
		return ErrNoPermission
	}
	if err := s.repo.Recipe.Delete(ctx, id, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecipeNotFound
		}
		s.logger.Error("删除食谱失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── AddToList ──────────────────────

func (s *recipeService) AddToList(ctx context.Context, id string, req *dto.AddToListRequest, callerID, callerRole string) (*dto.AddToListResponse, error) {
	recipe, err := s.getVisible(ctx, id, callerID, callerRole)
	if err != nil {
		return nil, err
	}
	if err := checkCourseAccess(ctx, s.repo, req.CourseID, callerID, callerRole); err != nil {
		return nil, err
	}

	additions, err := scaleIngredients(recipe.Ingredients, req.Portions)
	if err != nil {
		return nil, err
	}
	if len(additions) == 0 {
		return nil, ErrOrderNoItems
	}

	week := strings.TrimSpace(req.Week)
	pending, err := s.repo.Order.FindPending(ctx, callerID, req.CourseID, week)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询待审批清单失败", zap.Error(err))
		return nil, err
	}

	if pending == nil {
		order := &model.Order{
			TeacherID: callerID,
			CourseID:  req.CourseID,
			Week:      week,
			Items:     mergeOrderItems(nil, additions),
			Status:    model.OrderStatusPending,
			Notes:     recipe.Name,
		}
		order.CreatedBy = &callerID
		order.Recalculate()

		if err := s.repo.Order.Create(ctx, order); err != nil {
			s.logger.Error("创建订单失败", zap.Error(err))
			return nil, err
		}
		publishOrderEvent(ctx, s.publisher, events.OrderCreated, order)
		return s.addResult(ctx, order.OrderID, false)
	}

	pending.Items = mergeOrderItems(pending.Items, additions)
	pending.Recalculate()
	pending.UpdatedBy = &callerID
	if err := s.repo.Order.Update(ctx, pending); err != nil {
		s.logger.Warn("合并清单失败",
			zap.String("order_id", pending.OrderID),
			zap.Int("version", pending.Version),
			zap.Error(err),
		)
		return nil, err
	}
	publishOrderEvent(ctx, s.publisher, events.OrderMerged, pending)
	return s.addResult(ctx, pending.OrderID, true)
}

func (s *recipeService) addResult(ctx context.Context, orderID string, merged bool) (*dto.AddToListResponse, error) {
	order, err := s.repo.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &dto.AddToListResponse{Merged: merged, Order: toOrderResponse(order)}, nil
}

// scaleIngredients 每份用量 × 份数，换算到商品单位；计数单位向上取整
func scaleIngredients(ingredients []model.RecipeIngredient, portions int) ([]model.OrderItem, error) {
	n := decimal.NewFromInt(int64(portions))
	items := make([]model.OrderItem, 0, len(ingredients))
	for _, ing := range ingredients {
		if ing.Product == nil {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, ing.ProductID)
		}
		qty, ok := model.ConvertQuantity(ing.Quantity.Mul(n), ing.Unit, ing.Product.Unit)
		if !ok {
			return nil, fmt.Errorf("%w: %s (%s → %s)", ErrRecipeUnitIncompatible, ing.Product.Name, ing.Unit, ing.Product.Unit)
		}
		if model.IsCountUnit(ing.Product.Unit) {
			qty = qty.Ceil()
		}
		if !qty.IsPositive() {
			continue
		}
		items = append(items, newOrderItem(ing.Product, qty))
	}
	return items, nil
}

func portionsOrDefault(p int) int {
	if p <= 0 {
		return 1
	}
	return p
}

func toRecipeResponse(r *model.Recipe) dto.RecipeResponse {
	ingredients := make([]dto.IngredientResponse, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		item := dto.IngredientResponse{
			ProductID: ing.ProductID,
			Quantity:  ing.Quantity,
			Unit:      ing.Unit,
		}
		if ing.Product != nil {
			item.ProductName = ing.Product.Name
			item.Brand = ing.Product.Brand
			item.ProductUnit = ing.Product.Unit
		}
		ingredients = append(ingredients, item)
	}
	return dto.RecipeResponse{
		ID:          r.RecipeID,
		OwnerID:     r.OwnerID,
		Name:        r.Name,
		Category:    r.Category,
		Portions:    r.Portions,
		Preparation: r.Preparation,
		Ingredients: ingredients,
		CreatedAt:   formatTime(r.CreatedAt),
		UpdatedAt:   formatTime(r.UpdatedAt),
	}
}
