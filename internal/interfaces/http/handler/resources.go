package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/erp/client/internal/domain/finance"
	"github.com/erp/client/internal/domain/identity"
	"github.com/erp/client/internal/domain/inventory"
	"github.com/erp/client/internal/domain/shared"
	"github.com/erp/client/internal/interfaces/http/dto"
	"github.com/erp/client/internal/interfaces/http/mockdb"
)

// RegisterFinance mounts accounts, balances, budgets and fiscal years
func RegisterFinance(r gin.IRoutes, db *mockdb.DB) {
	accounts := &CRUD[finance.Account, finance.AccountInput]{
		BaseHandler: NewBaseHandler(),
		Label:       "Account",
		Table:       db.Accounts,
		Build: func(id shared.ID, in finance.AccountInput) finance.Account {
			return finance.Account{ID: id, Code: in.Code, Name: in.Name, Type: in.Type, ParentID: in.ParentID, IsActive: true}
		},
		Apply: func(row finance.Account, in finance.AccountInput) finance.Account {
			row.Code, row.Name, row.Type, row.ParentID = in.Code, in.Name, in.Type, in.ParentID
			return row
		},
		Check: func(id shared.ID, in finance.AccountInput) string {
			if in.ParentID != nil {
				if _, ok := db.Accounts.Get(*in.ParentID); !ok {
					return "Parent account does not exist"
				}
			}
			if db.Accounts.Exists(id, func(_ shared.ID, a finance.Account) bool { return a.Code == in.Code }) {
				return "Account code " + in.Code + " already exists"
			}
			return ""
		},
	}
	accounts.Register(r, finance.Accounts)

	for _, t := range []finance.AccountType{finance.AccountTypeMain, finance.AccountTypeSub, finance.AccountTypeLedger} {
		r.GET(t.ListPath(), func(c *gin.Context) {
			accounts.Success(c, "", db.Accounts.Filter(func(a finance.Account) bool { return a.Type == t }))
		})
	}

	balances := NewBaseHandler()
	r.GET(finance.AccountBalances.GetAll(), func(c *gin.Context) {
		balances.Success(c, "", db.Balances.List())
	})

	budgets := &CRUD[finance.Budget, finance.BudgetInput]{
		BaseHandler: NewBaseHandler(),
		Label:       "Budget",
		Table:       db.Budgets,
		Build: func(id shared.ID, in finance.BudgetInput) finance.Budget {
			return finance.Budget{ID: id, Name: in.Name, FiscalYearID: in.FiscalYearID, Amount: in.Amount, Spent: decimal.Zero, Status: "draft"}
		},
		Apply: func(row finance.Budget, in finance.BudgetInput) finance.Budget {
			row.Name, row.Amount = in.Name, in.Amount
			if in.FiscalYearID != 0 {
				row.FiscalYearID = in.FiscalYearID
			}
			return row
		},
		Check: func(id shared.ID, in finance.BudgetInput) string {
			if in.Amount.IsNegative() {
				return "Budget amount cannot be negative"
			}
			if in.FiscalYearID != 0 {
				fy, ok := db.FiscalYears.Get(in.FiscalYearID)
				if !ok {
					return "Fiscal year does not exist"
				}
				if fy.IsClosed {
					return "Fiscal year " + fy.Name + " is closed"
				}
			}
			if db.Budgets.Exists(id, func(_ shared.ID, b finance.Budget) bool { return strings.EqualFold(b.Name, in.Name) }) {
				return "A budget named " + in.Name + " already exists"
			}
			return ""
		},
	}
	budgets.Register(r, finance.Budgets)

	fiscalYears := &CRUD[finance.FiscalYear, finance.FiscalYearInput]{
		BaseHandler: NewBaseHandler(),
		Label:       "Fiscal year",
		Table:       db.FiscalYears,
		Build: func(id shared.ID, in finance.FiscalYearInput) finance.FiscalYear {
			return finance.FiscalYear{ID: id, Name: in.Name, StartDate: in.StartDate, EndDate: in.EndDate}
		},
		Apply: func(row finance.FiscalYear, in finance.FiscalYearInput) finance.FiscalYear {
			row.Name, row.StartDate, row.EndDate = in.Name, in.StartDate, in.EndDate
			return row
		},
		Check: func(_ shared.ID, in finance.FiscalYearInput) string {
			// ISO dates compare correctly as strings
			if in.EndDate <= in.StartDate {
				return "End date must be after start date"
			}
			return ""
		},
	}
	fiscalYears.Register(r, finance.FiscalYears)
}

// RegisterIdentity mounts roles, users and levels. Writes require guards.
func RegisterIdentity(r gin.IRoutes, db *mockdb.DB, guards ...gin.HandlerFunc) {
	roles := &CRUD[identity.Role, identity.RoleInput]{
		BaseHandler: NewBaseHandler(),
		Label:       "Role",
		Table:       db.Roles,
		Build: func(id shared.ID, in identity.RoleInput) identity.Role {
			return identity.Role{ID: id, Name: in.Name, Description: in.Description, Permissions: in.Permissions}
		},
		Apply: func(row identity.Role, in identity.RoleInput) identity.Role {
			row.Name, row.Description, row.Permissions = in.Name, in.Description, in.Permissions
			return row
		},
		Check: func(id shared.ID, in identity.RoleInput) string {
			if db.Roles.Exists(id, func(_ shared.ID, r identity.Role) bool { return strings.EqualFold(r.Name, in.Name) }) {
				return "Role " + in.Name + " already exists"
			}
			return ""
		},
	}
	roles.Register(r, identity.Roles, append(guards, roleInUse(roles, db))...)

	users := &CRUD[identity.User, identity.UserInput]{
		BaseHandler: NewBaseHandler(),
		Label:       "User",
		Table:       db.Users,
		Build: func(id shared.ID, in identity.UserInput) identity.User {
			return identity.User{ID: id, Username: in.Username, Email: in.Email, FullName: in.FullName, RoleID: in.RoleID, LevelID: in.LevelID, IsActive: true}
		},
		Apply: func(row identity.User, in identity.UserInput) identity.User {
			row.Username, row.Email, row.FullName, row.RoleID, row.LevelID = in.Username, in.Email, in.FullName, in.RoleID, in.LevelID
			return row
		},
		Check: func(id shared.ID, in identity.UserInput) string {
			if _, ok := db.Roles.Get(in.RoleID); !ok {
				return "Role does not exist"
			}
			if db.Users.Exists(id, func(_ shared.ID, u identity.User) bool { return u.Username == in.Username }) {
				return "Username " + in.Username + " is taken"
			}
			return ""
		},
	}
	users.Register(r, identity.Users, guards...)

	levels := &CRUD[identity.Level, identity.LevelInput]{
		BaseHandler: NewBaseHandler(),
		Label:       "Level",
		Table:       db.Levels,
		Build: func(id shared.ID, in identity.LevelInput) identity.Level {
			return identity.Level{ID: id, Name: in.Name, Rank: in.Rank}
		},
		Apply: func(row identity.Level, in identity.LevelInput) identity.Level {
			row.Name, row.Rank = in.Name, in.Rank
			return row
		},
	}
	levels.Register(r, identity.Levels, guards...)
}

// roleInUse refuses to delete a role that is still assigned to a user
func roleInUse(h *CRUD[identity.Role, identity.RoleInput], db *mockdb.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodDelete {
			c.Next()
			return
		}
		id, ok := h.pathID(c)
		if !ok {
			c.Abort()
			return
		}
		inUse := len(db.Users.Filter(func(u identity.User) bool { return u.RoleID == id })) > 0
		if inUse {
			h.Reject(c, dto.ErrCodeConflict, "Role is assigned to users and cannot be deleted")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RegisterInventory mounts inventory items
func RegisterInventory(r gin.IRoutes, db *mockdb.DB) {
	items := &CRUD[inventory.Item, inventory.ItemInput]{
		BaseHandler: NewBaseHandler(),
		Label:       "Item",
		Table:       db.Items,
		Build: func(id shared.ID, in inventory.ItemInput) inventory.Item {
			return inventory.Item{ID: id, SKU: in.SKU, Name: in.Name, Unit: in.Unit, UnitPrice: in.UnitPrice, Quantity: decimal.Zero}
		},
		Apply: func(row inventory.Item, in inventory.ItemInput) inventory.Item {
			row.SKU, row.Name, row.Unit, row.UnitPrice = in.SKU, in.Name, in.Unit, in.UnitPrice
			return row
		},
		Check: func(id shared.ID, in inventory.ItemInput) string {
			if in.UnitPrice.IsNegative() {
				return "Unit price cannot be negative"
			}
			if db.Items.Exists(id, func(_ shared.ID, it inventory.Item) bool { return it.SKU == in.SKU }) {
				return "SKU " + in.SKU + " already exists"
			}
			return ""
		},
	}
	items.Register(r, inventory.Items)
}
