package registers

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tillpoint/pos-backend/internal/pricing"
	"github.com/tillpoint/pos-backend/pkg/enums"
	pkgerrors "github.com/tillpoint/pos-backend/pkg/errors"
)

// ProductSnapshot is the slice of catalog state a cart line keeps. Carted
// items keep pricing locally so later catalog edits do not reprice lines that
// are already rung up.
type ProductSnapshot struct {
	ID        uuid.UUID
	Name      string
	BasePrice decimal.Decimal
	Sized     bool
}

// LineItem is one product entry within a cart.
type LineItem struct {
	Product     ProductSnapshot
	Quantity    int
	VariantSize *enums.VariantSize
	ManualPrice *decimal.Decimal
}

// Cart is an in-progress, not-yet-finalized collection of selected items.
type Cart struct {
	ID          uuid.UUID
	DisplayName string
	Items       []LineItem
	CreatedAt   time.Time
}

// LineView is a priced line for rendering.
type LineView struct {
	Product     ProductSnapshot
	Quantity    int
	VariantSize *enums.VariantSize
	ManualPrice *decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// CartView is a priced snapshot of a cart. Totals are derived on every read;
// the manager never stores them.
type CartView struct {
	ID          uuid.UUID
	DisplayName string
	Active      bool
	CreatedAt   time.Time
	Items       []LineView
	Total       decimal.Decimal
}

// Manager owns every concurrent in-progress cart on the terminal. Exactly one
// cart is active for input routing, and at least one cart always exists.
type Manager struct {
	mu       sync.Mutex
	carts    []*Cart
	activeID uuid.UUID
	seq      int
	now      func() time.Time
}

// NewManager boots the register with a single empty active cart.
func NewManager() *Manager {
	m := &Manager{now: time.Now}
	cart := m.newCartLocked()
	m.carts = append(m.carts, cart)
	m.activeID = cart.ID
	return m
}

func (m *Manager) newCartLocked() *Cart {
	m.seq++
	return &Cart{
		ID:          uuid.New(),
		DisplayName: fmt.Sprintf("Cart %d", m.seq),
		CreatedAt:   m.now(),
	}
}

// CreateCart opens a fresh cart and routes input to it.
func (m *Manager) CreateCart() CartView {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart := m.newCartLocked()
	m.carts = append(m.carts, cart)
	m.activeID = cart.ID
	return m.viewLocked(cart)
}

// ActivateCart switches input routing to the given cart.
func (m *Manager) ActivateCart(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findLocked(id) == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	m.activeID = id
	return nil
}

// RenameCart updates the tab label shown for the cart.
func (m *Manager) RenameCart(id uuid.UUID, name string) error {
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart name is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cart := m.findLocked(id)
	if cart == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	cart.DisplayName = name
	return nil
}

// DeleteCart removes an empty, non-final cart. Deleting the active cart moves
// focus to the first remaining cart in creation order.
func (m *Manager) DeleteCart(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := -1
	for i, cart := range m.carts {
		if cart.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	if len(m.carts[idx].Items) > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "cart is not empty")
	}
	if len(m.carts) == 1 {
		return pkgerrors.New(pkgerrors.CodeConflict, "last cart is protected")
	}

	m.carts = append(m.carts[:idx], m.carts[idx+1:]...)
	if m.activeID == id {
		m.activeID = m.carts[0].ID
	}
	return nil
}

// AddItem increments the quantity of an existing line for the product or
// appends a new line with quantity one.
func (m *Manager) AddItem(cartID uuid.UUID, product ProductSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart := m.findLocked(cartID)
	if cart == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	for i := range cart.Items {
		if cart.Items[i].Product.ID == product.ID {
			cart.Items[i].Quantity++
			return nil
		}
	}
	cart.Items = append(cart.Items, LineItem{Product: product, Quantity: 1})
	return nil
}

// RemoveItem decrements the line quantity; the line disappears at zero.
func (m *Manager) RemoveItem(cartID, productID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart := m.findLocked(cartID)
	if cart == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	for i := range cart.Items {
		if cart.Items[i].Product.ID == productID {
			cart.Items[i].Quantity--
			if cart.Items[i].Quantity <= 0 {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			}
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
}

// SetVariant records the chosen size for a line. Callers only surface the
// size picker for sized categories.
func (m *Manager) SetVariant(cartID, productID uuid.UUID, size enums.VariantSize) error {
	if !size.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid variant size %q", size))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cart := m.findLocked(cartID)
	if cart == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	for i := range cart.Items {
		if cart.Items[i].Product.ID == productID {
			cart.Items[i].VariantSize = &size
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
}

// SetManualPrice overrides the effective price for one line without touching
// the catalog base price.
func (m *Manager) SetManualPrice(cartID, productID uuid.UUID, price decimal.Decimal) error {
	if !price.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "manual price must be positive")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	cart := m.findLocked(cartID)
	if cart == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	for i := range cart.Items {
		if cart.Items[i].Product.ID == productID {
			cart.Items[i].ManualPrice = &price
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
}

// Snapshot returns a priced copy of one cart.
func (m *Manager) Snapshot(cartID uuid.UUID) (CartView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart := m.findLocked(cartID)
	if cart == nil {
		return CartView{}, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	return m.viewLocked(cart), nil
}

// Carts returns priced copies of every cart in creation order.
func (m *Manager) Carts() []CartView {
	m.mu.Lock()
	defer m.mu.Unlock()

	views := make([]CartView, 0, len(m.carts))
	for _, cart := range m.carts {
		views = append(views, m.viewLocked(cart))
	}
	return views
}

// ActiveCartID reports which cart currently receives input.
func (m *Manager) ActiveCartID() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

// Clear empties the cart after checkout and restamps CreatedAt; the cart is
// reused as a fresh receptacle rather than destroyed.
func (m *Manager) Clear(cartID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cart := m.findLocked(cartID)
	if cart == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	cart.Items = nil
	cart.CreatedAt = m.now()
	return nil
}

func (m *Manager) findLocked(id uuid.UUID) *Cart {
	for _, cart := range m.carts {
		if cart.ID == id {
			return cart
		}
	}
	return nil
}

func (m *Manager) viewLocked(cart *Cart) CartView {
	view := CartView{
		ID:          cart.ID,
		DisplayName: cart.DisplayName,
		Active:      cart.ID == m.activeID,
		CreatedAt:   cart.CreatedAt,
		Items:       make([]LineView, 0, len(cart.Items)),
	}
	lines := make([]pricing.Line, 0, len(cart.Items))
	for _, item := range cart.Items {
		line := pricing.Line{
			BasePrice:   item.Product.BasePrice,
			Sized:       item.Product.Sized,
			VariantSize: item.VariantSize,
			ManualPrice: item.ManualPrice,
			Quantity:    item.Quantity,
		}
		lines = append(lines, line)
		view.Items = append(view.Items, LineView{
			Product:     item.Product,
			Quantity:    item.Quantity,
			VariantSize: item.VariantSize,
			ManualPrice: item.ManualPrice,
			UnitPrice:   pricing.UnitPrice(line),
			LineTotal:   pricing.LineTotal(line),
		})
	}
	view.Total = pricing.CartTotal(lines)
	return view
}
