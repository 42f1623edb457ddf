package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"irufoodflow/backend/internal/model"
	"irufoodflow/backend/internal/repository"
	pkgerrors "irufoodflow/backend/pkg/errors"
)

// ── 测试辅助：组装全部 Mock ──

type mockRepos struct {
	user     *mockUserRepo
	course   *mockCourseRepo
	product  *mockProductRepo
	order    *mockOrderRepo
	recipe   *mockRecipeRepo
	asset    *mockAssetRepo
	count    *mockInventoryCountRepo
	slot     *mockScheduleSlotRepo
	calendar *mockCalendarEventRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	m := &mockRepos{}
	m.user = newMockUserRepo()
	m.course = newMockCourseRepo(m.user)
	m.product = newMockProductRepo()
	m.order = newMockOrderRepo(m.course, m.user)
	m.recipe = newMockRecipeRepo(m.product)
	m.asset = newMockAssetRepo()
	m.count = newMockInventoryCountRepo(m.asset)
	m.slot = &mockScheduleSlotRepo{}
	m.calendar = &mockCalendarEventRepo{}

	repo := &repository.Repository{
		User:           m.user,
		Course:         m.course,
		Product:        m.product,
		Order:          m.order,
		Recipe:         m.recipe,
		Asset:          m.asset,
		InventoryCount: m.count,
		ScheduleSlot:   m.slot,
		CalendarEvent:  m.calendar,
	}
	return repo, m
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, filters *repository.UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if filters.Role != "" && u.Role != filters.Role {
			continue
		}
		if filters.Keyword != "" && !strings.Contains(u.Username+u.Name, filters.Keyword) {
			continue
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	total := int64(len(result))
	if offset >= len(result) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockUserRepo) ListByCourse(_ context.Context, courseID string) ([]model.User, error) {
	var result []model.User
	for _, u := range m.users {
		if u.CourseIDs.Contains(courseID) {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) CountByRole(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, u := range m.users {
		counts[u.Role]++
	}
	return counts, nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
	users   *mockUserRepo
}

func newMockCourseRepo(users *mockUserRepo) *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course), users: users}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		course.CourseID = "course-" + course.Code
	}
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetByCode(_ context.Context, code string) (*model.Course, error) {
	for _, c := range m.courses {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context, includeInactive bool) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		if c.IsActive || includeInactive {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockCourseRepo) ListByIDs(_ context.Context, ids []string) ([]model.Course, error) {
	var result []model.Course
	for _, id := range ids {
		if c, ok := m.courses[id]; ok {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.courses)), nil
}

func (m *mockCourseRepo) DeleteWithAssignments(_ context.Context, id string) (int64, error) {
	if _, ok := m.courses[id]; !ok {
		return 0, gorm.ErrRecordNotFound
	}
	var cleaned int64
	for _, u := range m.users.users {
		if u.CourseIDs.Contains(id) {
			u.CourseIDs = u.CourseIDs.Without(id)
			cleaned++
		}
	}
	delete(m.courses, id)
	return cleaned, nil
}

// ── Mock ProductRepository ──

type mockProductRepo struct {
	products map[string]*model.Product
	seq      int
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[string]*model.Product)}
}

func (m *mockProductRepo) nextID() string {
	m.seq++
	return fmt.Sprintf("product-%d", m.seq)
}

func (m *mockProductRepo) Create(_ context.Context, product *model.Product) error {
	for _, p := range m.products {
		if p.StockKey() == product.StockKey() {
			return gorm.ErrDuplicatedKey
		}
	}
	if product.ProductID == "" {
		product.ProductID = m.nextID()
	}
	m.products[product.ProductID] = product
	return nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*model.Product, error) {
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProductRepo) GetByNameBrand(_ context.Context, name, brand string) (*model.Product, error) {
	for _, p := range m.products {
		if p.Name == name && p.Brand == brand {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProductRepo) filtered(filters *repository.ProductFilters) []model.Product {
	var result []model.Product
	for _, p := range m.products {
		if filters != nil && filters.Category != "" && p.Category != filters.Category {
			continue
		}
		if filters != nil && filters.Keyword != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.Brand), strings.ToLower(filters.Keyword)) {
			continue
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Category != result[j].Category {
			return result[i].Category < result[j].Category
		}
		return result[i].Name < result[j].Name
	})
	return result
}

func (m *mockProductRepo) List(_ context.Context, filters *repository.ProductFilters, offset, limit int) ([]model.Product, int64, error) {
	result := m.filtered(filters)
	total := int64(len(result))
	if offset >= len(result) {
		return []model.Product{}, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockProductRepo) ListAll(_ context.Context, filters *repository.ProductFilters) ([]model.Product, error) {
	return m.filtered(filters), nil
}

func (m *mockProductRepo) ListByIDs(_ context.Context, ids []string) ([]model.Product, error) {
	var result []model.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockProductRepo) Update(_ context.Context, product *model.Product) error {
	m.products[product.ProductID] = product
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := m.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *mockProductRepo) Categories(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var result []string
	for _, p := range m.products {
		if p.Category != "" && !seen[p.Category] {
			seen[p.Category] = true
			result = append(result, p.Category)
		}
	}
	sort.Strings(result)
	return result, nil
}

func (m *mockProductRepo) UpdateStock(_ context.Context, id string, qty decimal.Decimal, at time.Time) error {
	p, ok := m.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock = qty
	p.StockUpdatedAt = &at
	return nil
}

func (m *mockProductRepo) Upsert(_ context.Context, products []model.Product, withStock bool) error {
	for i := range products {
		in := products[i]
		var existing *model.Product
		for _, p := range m.products {
			if p.Name == in.Name && p.Brand == in.Brand {
				existing = p
				break
			}
		}
		if existing == nil {
			in.ProductID = m.nextID()
			m.products[in.ProductID] = &in
			continue
		}
		existing.Price = in.Price
		existing.Unit = in.Unit
		existing.Category = in.Category
		if withStock {
			existing.Stock = in.Stock
			existing.StockUpdatedAt = in.StockUpdatedAt
		}
	}
	return nil
}

func (m *mockProductRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.products)), nil
}

func (m *mockProductRepo) CountZeroStock(_ context.Context) (int64, error) {
	var n int64
	for _, p := range m.products {
		if p.Stock.IsZero() {
			n++
		}
	}
	return n, nil
}

// ── Mock OrderRepository ──

// mockOrderRepo 存储副本，Update 按版本号模拟乐观锁
type mockOrderRepo struct {
	orders  map[string]*model.Order
	created []string
	courses *mockCourseRepo
	users   *mockUserRepo
	creates int
	updates int
}

func newMockOrderRepo(courses *mockCourseRepo, users *mockUserRepo) *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[string]*model.Order), courses: courses, users: users}
}

func cloneOrder(o *model.Order) *model.Order {
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp
}

// withRelations 模拟 Preload Teacher / Course
func (m *mockOrderRepo) withRelations(o *model.Order) *model.Order {
	cp := cloneOrder(o)
	if c, ok := m.courses.courses[cp.CourseID]; ok {
		cp.Course = c
	}
	if u, ok := m.users.users[cp.TeacherID]; ok {
		cp.Teacher = u
	}
	return cp
}

func (m *mockOrderRepo) Create(_ context.Context, order *model.Order) error {
	m.creates++
	if order.OrderID == "" {
		order.OrderID = fmt.Sprintf("order-%d", m.creates)
	}
	if order.Version == 0 {
		order.Version = 1
	}
	order.CreatedAt = time.Now()
	m.orders[order.OrderID] = cloneOrder(order)
	m.created = append(m.created, order.OrderID)
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*model.Order, error) {
	if o, ok := m.orders[id]; ok {
		return m.withRelations(o), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderRepo) match(o *model.Order, filters *repository.OrderFilters) bool {
	if filters == nil {
		return true
	}
	if filters.Week != "" && o.Week != filters.Week {
		return false
	}
	if filters.CourseID != "" && o.CourseID != filters.CourseID {
		return false
	}
	if filters.TeacherID != "" && o.TeacherID != filters.TeacherID {
		return false
	}
	if len(filters.Statuses) > 0 {
		found := false
		for _, s := range filters.Statuses {
			if o.Status == s {
				found = true
			}
		}
		return found
	}
	return true
}

func (m *mockOrderRepo) ListAll(_ context.Context, filters *repository.OrderFilters) ([]model.Order, error) {
	var result []model.Order
	for _, id := range m.created {
		o, ok := m.orders[id]
		if !ok || !m.match(o, filters) {
			continue
		}
		result = append(result, *m.withRelations(o))
	}
	return result, nil
}

func (m *mockOrderRepo) List(ctx context.Context, filters *repository.OrderFilters, offset, limit int) ([]model.Order, int64, error) {
	all, _ := m.ListAll(ctx, filters)
	total := int64(len(all))
	if offset >= len(all) {
		return []model.Order{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockOrderRepo) Update(_ context.Context, order *model.Order) error {
	stored, ok := m.orders[order.OrderID]
	if !ok || stored.Version != order.Version {
		return pkgerrors.ErrOptimisticLock
	}
	m.updates++
	order.Version++
	cp := cloneOrder(order)
	cp.Course, cp.Teacher = nil, nil
	m.orders[order.OrderID] = cp
	return nil
}

func (m *mockOrderRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := m.orders[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *mockOrderRepo) FindPending(_ context.Context, teacherID, courseID, week string) (*model.Order, error) {
	for i := len(m.created) - 1; i >= 0; i-- {
		o, ok := m.orders[m.created[i]]
		if !ok {
			continue
		}
		if o.TeacherID == teacherID && o.CourseID == courseID && o.Week == week && o.Status == model.OrderStatusPending {
			return cloneOrder(o), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOrderRepo) DistinctWeeks(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var weeks []string
	for _, o := range m.orders {
		if !seen[o.Week] {
			seen[o.Week] = true
			weeks = append(weeks, o.Week)
		}
	}
	return weeks, nil
}

func (m *mockOrderRepo) CountByStatus(_ context.Context, teacherID string) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, o := range m.orders {
		if teacherID == "" || o.TeacherID == teacherID {
			counts[o.Status]++
		}
	}
	return counts, nil
}

func (m *mockOrderRepo) CountCreatedSince(_ context.Context, since time.Time) (int64, error) {
	var n int64
	for _, o := range m.orders {
		if !o.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// ── Mock RecipeRepository ──

type mockRecipeRepo struct {
	recipes  map[string]*model.Recipe
	products *mockProductRepo
	seq      int
}

func newMockRecipeRepo(products *mockProductRepo) *mockRecipeRepo {
	return &mockRecipeRepo{recipes: make(map[string]*model.Recipe), products: products}
}

// withProducts 模拟 Preload Ingredients.Product
func (m *mockRecipeRepo) withProducts(r *model.Recipe) *model.Recipe {
	cp := *r
	cp.Ingredients = make([]model.RecipeIngredient, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		if p, ok := m.products.products[ing.ProductID]; ok {
			prod := *p
			ing.Product = &prod
		}
		cp.Ingredients[i] = ing
	}
	return &cp
}

func (m *mockRecipeRepo) Create(_ context.Context, recipe *model.Recipe) error {
	m.seq++
	if recipe.RecipeID == "" {
		recipe.RecipeID = fmt.Sprintf("recipe-%d", m.seq)
	}
	cp := *recipe
	m.recipes[recipe.RecipeID] = &cp
	return nil
}

func (m *mockRecipeRepo) GetByID(_ context.Context, id string) (*model.Recipe, error) {
	if r, ok := m.recipes[id]; ok {
		return m.withProducts(r), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRecipeRepo) List(_ context.Context, ownerID, keyword string) ([]model.Recipe, error) {
	var result []model.Recipe
	for _, r := range m.recipes {
		if ownerID != "" && r.OwnerID != ownerID {
			continue
		}
		if keyword != "" && !strings.Contains(r.Name, keyword) {
			continue
		}
		result = append(result, *m.withProducts(r))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockRecipeRepo) Update(_ context.Context, recipe *model.Recipe) error {
	if _, ok := m.recipes[recipe.RecipeID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *recipe
	m.recipes[recipe.RecipeID] = &cp
	return nil
}

func (m *mockRecipeRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := m.recipes[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.recipes, id)
	return nil
}

func (m *mockRecipeRepo) CountByOwner(_ context.Context, ownerID string) (int64, error) {
	var n int64
	for _, r := range m.recipes {
		if r.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

// ── Mock InventoryAssetRepository ──

type mockAssetRepo struct {
	assets map[string]*model.InventoryAsset
	seq    int
}

func newMockAssetRepo() *mockAssetRepo {
	return &mockAssetRepo{assets: make(map[string]*model.InventoryAsset)}
}

func (m *mockAssetRepo) Create(_ context.Context, asset *model.InventoryAsset) error {
	m.seq++
	if asset.AssetID == "" {
		asset.AssetID = fmt.Sprintf("asset-%d", m.seq)
	}
	m.assets[asset.AssetID] = asset
	return nil
}

func (m *mockAssetRepo) GetByID(_ context.Context, id string) (*model.InventoryAsset, error) {
	if a, ok := m.assets[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssetRepo) GetByCode(_ context.Context, code string) (*model.InventoryAsset, error) {
	for _, a := range m.assets {
		if a.Code == code {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssetRepo) List(_ context.Context, category, keyword string) ([]model.InventoryAsset, error) {
	var result []model.InventoryAsset
	for _, a := range m.assets {
		if category != "" && a.Category != category {
			continue
		}
		if keyword != "" && !strings.Contains(a.Code+" "+a.Name, keyword) {
			continue
		}
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockAssetRepo) Update(_ context.Context, asset *model.InventoryAsset) error {
	m.assets[asset.AssetID] = asset
	return nil
}

func (m *mockAssetRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := m.assets[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.assets, id)
	return nil
}

func (m *mockAssetRepo) Upsert(ctx context.Context, assets []model.InventoryAsset) error {
	for i := range assets {
		in := assets[i]
		if existing, err := m.GetByCode(ctx, in.Code); err == nil {
			in.AssetID = existing.AssetID
			m.assets[in.AssetID] = &in
			continue
		}
		if err := m.Create(ctx, &in); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockAssetRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.assets)), nil
}

// ── Mock InventoryCountRepository ──

type mockInventoryCountRepo struct {
	sessions map[string]*model.InventoryCountSession
	assets   *mockAssetRepo
	seq      int
}

func newMockInventoryCountRepo(assets *mockAssetRepo) *mockInventoryCountRepo {
	return &mockInventoryCountRepo{sessions: make(map[string]*model.InventoryCountSession), assets: assets}
}

func (m *mockInventoryCountRepo) StartSession(ctx context.Context, title string, countedBy string) (*model.InventoryCountSession, error) {
	version := 0
	for _, s := range m.sessions {
		if s.Title == title && s.Version > version {
			version = s.Version
		}
	}
	m.seq++
	session := &model.InventoryCountSession{
		SessionID: fmt.Sprintf("session-%d", m.seq),
		Title:     title,
		Version:   version + 1,
		Status:    model.CountSessionOpen,
		CountedBy: &countedBy,
		CreatedAt: time.Now(),
	}
	assets, _ := m.assets.List(ctx, "", "")
	for i, a := range assets {
		session.Items = append(session.Items, model.InventoryCountItem{
			CountItemID: fmt.Sprintf("%s-item-%d", session.SessionID, i+1),
			SessionID:   session.SessionID,
			AssetID:     a.AssetID,
			ExpectedQty: a.Quantity,
		})
	}
	m.sessions[session.SessionID] = session
	return session, nil
}

func (m *mockInventoryCountRepo) GetSession(_ context.Context, id string) (*model.InventoryCountSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	cp.Items = make([]model.InventoryCountItem, len(s.Items))
	for i, it := range s.Items {
		if a, ok := m.assets.assets[it.AssetID]; ok {
			asset := *a
			it.Asset = &asset
		}
		cp.Items[i] = it
	}
	return &cp, nil
}

func (m *mockInventoryCountRepo) ListSessions(_ context.Context) ([]model.InventoryCountSession, error) {
	var result []model.InventoryCountSession
	for _, s := range m.sessions {
		cp := *s
		cp.Items = nil
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SessionID > result[j].SessionID })
	return result, nil
}

func (m *mockInventoryCountRepo) GetItem(_ context.Context, sessionID, assetID string) (*model.InventoryCountItem, error) {
	if s, ok := m.sessions[sessionID]; ok {
		for i := range s.Items {
			if s.Items[i].AssetID == assetID {
				it := s.Items[i]
				return &it, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInventoryCountRepo) UpdateItem(_ context.Context, item *model.InventoryCountItem) error {
	s, ok := m.sessions[item.SessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range s.Items {
		if s.Items[i].CountItemID == item.CountItemID {
			it := *item
			it.Asset = nil
			s.Items[i] = it
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockInventoryCountRepo) UpdateItems(ctx context.Context, items []model.InventoryCountItem) error {
	for i := range items {
		if err := m.UpdateItem(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockInventoryCountRepo) CompleteSession(_ context.Context, sessionID string, at time.Time) error {
	s, ok := m.sessions[sessionID]
	if !ok || s.Status != model.CountSessionOpen {
		return gorm.ErrRecordNotFound
	}
	for _, it := range s.Items {
		if it.CountedQty == nil {
			continue
		}
		if a, ok := m.assets.assets[it.AssetID]; ok {
			a.Quantity = *it.CountedQty
			if it.Condition != "" {
				a.Condition = it.Condition
			}
		}
	}
	s.Status = model.CountSessionCompleted
	s.CompletedAt = &at
	return nil
}

func (m *mockInventoryCountRepo) CountOpen(_ context.Context) (int64, error) {
	var n int64
	for _, s := range m.sessions {
		if s.Status == model.CountSessionOpen {
			n++
		}
	}
	return n, nil
}

// ── Mock ScheduleSlotRepository ──

type mockScheduleSlotRepo struct {
	slots []model.ScheduleSlot
	seq   int
}

func (m *mockScheduleSlotRepo) matches(s *model.ScheduleSlot, f *repository.ScheduleFilter) bool {
	return (f.Program == "" || s.Program == f.Program) &&
		(f.ClassName == "" || s.ClassName == f.ClassName) &&
		(f.Term == "" || s.Term == f.Term) &&
		(f.Year == "" || s.Year == f.Year)
}

func (m *mockScheduleSlotRepo) Create(_ context.Context, slot *model.ScheduleSlot) error {
	m.seq++
	if slot.SlotID == "" {
		slot.SlotID = fmt.Sprintf("slot-%d", m.seq)
	}
	m.slots = append(m.slots, *slot)
	return nil
}

func (m *mockScheduleSlotRepo) GetByID(_ context.Context, id string) (*model.ScheduleSlot, error) {
	for i := range m.slots {
		if m.slots[i].SlotID == id {
			s := m.slots[i]
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleSlotRepo) Update(_ context.Context, slot *model.ScheduleSlot) error {
	for i := range m.slots {
		if m.slots[i].SlotID == slot.SlotID {
			m.slots[i] = *slot
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockScheduleSlotRepo) Delete(_ context.Context, id string) error {
	for i := range m.slots {
		if m.slots[i].SlotID == id {
			m.slots = append(m.slots[:i], m.slots[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockScheduleSlotRepo) List(_ context.Context, filter *repository.ScheduleFilter) ([]model.ScheduleSlot, error) {
	var result []model.ScheduleSlot
	for i := range m.slots {
		if m.matches(&m.slots[i], filter) {
			result = append(result, m.slots[i])
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].DayOfWeek != result[j].DayOfWeek {
			return result[i].DayOfWeek < result[j].DayOfWeek
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockScheduleSlotRepo) DistinctValues(_ context.Context) (*repository.ScheduleFilterValues, error) {
	values := &repository.ScheduleFilterValues{}
	seen := make(map[string]bool)
	add := func(list *[]string, kind, v string) {
		if !seen[kind+v] {
			seen[kind+v] = true
			*list = append(*list, v)
		}
	}
	for _, s := range m.slots {
		add(&values.Programs, "p", s.Program)
		add(&values.Classes, "c", s.ClassName)
		add(&values.Terms, "t", s.Term)
		add(&values.Years, "y", s.Year)
	}
	return values, nil
}

func (m *mockScheduleSlotRepo) ReplaceByFilter(ctx context.Context, filter *repository.ScheduleFilter, slots []model.ScheduleSlot, replace bool) error {
	if replace {
		kept := m.slots[:0]
		for _, s := range m.slots {
			if !m.matches(&s, filter) {
				kept = append(kept, s)
			}
		}
		m.slots = kept
	}
	for i := range slots {
		if err := m.Create(ctx, &slots[i]); err != nil {
			return err
		}
	}
	return nil
}

// ── Mock CalendarEventRepository ──

type mockCalendarEventRepo struct {
	events []model.CalendarEvent
	seq    int
}

func (m *mockCalendarEventRepo) Create(_ context.Context, event *model.CalendarEvent) error {
	m.seq++
	if event.EventID == "" {
		event.EventID = fmt.Sprintf("event-%d", m.seq)
	}
	m.events = append(m.events, *event)
	return nil
}

func (m *mockCalendarEventRepo) BatchCreate(ctx context.Context, events []model.CalendarEvent) error {
	for i := range events {
		if err := m.Create(ctx, &events[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockCalendarEventRepo) GetByID(_ context.Context, id string) (*model.CalendarEvent, error) {
	for i := range m.events {
		if m.events[i].EventID == id {
			e := m.events[i]
			return &e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCalendarEventRepo) Update(_ context.Context, event *model.CalendarEvent) error {
	for i := range m.events {
		if m.events[i].EventID == event.EventID {
			m.events[i] = *event
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockCalendarEventRepo) Delete(_ context.Context, id string) error {
	for i := range m.events {
		if m.events[i].EventID == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockCalendarEventRepo) List(_ context.Context, term, year string, week int) ([]model.CalendarEvent, error) {
	var result []model.CalendarEvent
	for _, e := range m.events {
		if (term == "" || e.Term == term) && (year == "" || e.Year == year) && (week == 0 || e.WeekNumber == week) {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].WeekNumber != result[j].WeekNumber {
			return result[i].WeekNumber < result[j].WeekNumber
		}
		return result[i].DayOfWeek < result[j].DayOfWeek
	})
	return result, nil
}

// ── 测试数据 ──

func seedCourse(m *mockRepos, code, name string) *model.Course {
	c := &model.Course{CourseID: "course-" + code, Code: code, Name: name, IsActive: true}
	m.course.courses[c.CourseID] = c
	return c
}

func seedTeacher(m *mockRepos, username string, courseIDs ...string) *model.User {
	u := &model.User{
		UserID:    "user-" + username,
		Username:  username,
		Name:      "Öğretmen " + username,
		Role:      model.RoleTeacher,
		CourseIDs: model.StringArray(courseIDs),
		IsActive:  true,
	}
	m.user.users[u.UserID] = u
	return u
}

func seedProduct(m *mockRepos, name, brand, unit, category string, price, stock string) *model.Product {
	m.product.seq++
	p := &model.Product{
		ProductID: fmt.Sprintf("product-%d", m.product.seq),
		Name:      name,
		Brand:     brand,
		Unit:      unit,
		Category:  category,
		Price:     decimal.RequireFromString(price),
		Stock:     decimal.RequireFromString(stock),
	}
	m.product.products[p.ProductID] = p
	return p
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
