package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"irufoodflow/backend/internal/dto"
	"irufoodflow/backend/internal/service"
	"irufoodflow/backend/pkg/response"
)

// RecipeHandler 食谱 HTTP 处理器
type RecipeHandler struct {
	recipeSvc service.RecipeService
}

// NewRecipeHandler 创建 RecipeHandler
func NewRecipeHandler(recipeSvc service.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipeSvc: recipeSvc}
}

// ListRecipes 食谱列表（教师仅见本人）
// GET /api/v1/recipes
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var req dto.RecipeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	recipes, err := h.recipeSvc.List(c.Request.Context(), &req, callerID, role)
	if err != nil {
		h.handleRecipeError(c, err)
		return
	}

	response.OK(c, gin.H{"list": recipes})
}

// GetRecipe 食谱详情
// GET /api/v1/recipes/:id
func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	recipe, err := h.recipeSvc.GetByID(c.Request.Context(), c.Param("id"), callerID, role)
	if err != nil {
		h.handleRecipeError(c, err)
		return
	}

	response.OK(c, recipe)
}

// CreateRecipe 新建食谱
// POST /api/v1/recipes
func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var req dto.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	recipe, err := h.recipeSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleRecipeError(c, err)
		return
	}

	response.Created(c, recipe)
}

// UpdateRecipe 更新食谱
// PUT /api/v1/recipes/:id
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	var req dto.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	recipe, err := h.recipeSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID, role)
	if err != nil {
		h.handleRecipeError(c, err)
		return
	}

	response.OK(c, recipe)
}

// DeleteRecipe 删除食谱
// DELETE /api/v1/recipes/:id
func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.recipeSvc.Delete(c.Request.Context(), c.Param("id"), callerID, role); err != nil {
		h.handleRecipeError(c, err)
		return
	}

	response.OK(c, nil)
}

// AddToList 按份数把食谱配料加入采购清单
// POST /api/v1/recipes/:id/add-to-list
func (h *RecipeHandler) AddToList(c *gin.Context) {
	var req dto.AddToListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.recipeSvc.AddToList(c.Request.Context(), c.Param("id"), &req, callerID, role)
	if err != nil {
		h.handleRecipeError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *RecipeHandler) handleRecipeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRecipeNotFound):
		response.NotFound(c, 18001, "食谱不存在")
	case errors.Is(err, service.ErrRecipeNoIngredients):
		response.BadRequest(c, 18002, "食谱至少需要一种配料")
	case errors.Is(err, service.ErrRecipeInvalidQuantity):
		response.ErrorWithDetails(c, http.StatusBadRequest, 18003, "配料用量必须大于 0", err.Error())
	case errors.Is(err, service.ErrRecipeUnitIncompatible):
		response.ErrorWithDetails(c, http.StatusBadRequest, 18004, "配料单位与商品单位不兼容", err.Error())
	case errors.Is(err, service.ErrProductInvalidUnit):
		response.ErrorWithDetails(c, http.StatusBadRequest, 18005, "配料计量单位不合法", err.Error())
	case errors.Is(err, service.ErrProductNotFound):
		response.BadRequest(c, 18006, "配料引用的商品不存在")
	case errors.Is(err, service.ErrCourseNotFound):
		response.BadRequest(c, 18007, "课程不存在")
	case errors.Is(err, service.ErrOrderCourseNotAssigned):
		response.Forbidden(c, 18008, "该课程未分配给当前教师")
	case errors.Is(err, service.ErrOrderNoItems):
		response.BadRequest(c, 18009, "换算后没有可加入清单的配料")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
