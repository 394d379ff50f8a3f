package mockdb

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/erp/client/internal/domain/finance"
	"github.com/erp/client/internal/domain/identity"
	"github.com/erp/client/internal/domain/inventory"
	"github.com/erp/client/internal/domain/shared"
)

// Role names carried in issued tokens
const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

// Credential is a login the mock API accepts
type Credential struct {
	PasswordHash []byte
	UserID       shared.ID
	Roles        []string
}

// DB holds every table of the mock API
type DB struct {
	Accounts    *Table[finance.Account]
	Balances    *Table[finance.AccountBalance]
	Budgets     *Table[finance.Budget]
	FiscalYears *Table[finance.FiscalYear]
	Roles       *Table[identity.Role]
	Users       *Table[identity.User]
	Levels      *Table[identity.Level]
	Items       *Table[inventory.Item]

	credentials map[string]Credential
}

// New creates an empty database with no logins
func New() *DB {
	return &DB{
		Accounts:    NewTable[finance.Account](),
		Balances:    NewTable[finance.AccountBalance](),
		Budgets:     NewTable[finance.Budget](),
		FiscalYears: NewTable[finance.FiscalYear](),
		Roles:       NewTable[identity.Role](),
		Users:       NewTable[identity.User](),
		Levels:      NewTable[identity.Level](),
		Items:       NewTable[inventory.Item](),
		credentials: make(map[string]Credential),
	}
}

// passwordCost is low because mock logins are seeded on every start
const passwordCost = bcrypt.MinCost

// AddLogin registers username/password with roles
func (db *DB) AddLogin(username, password string, userID shared.ID, roles ...string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return err
	}
	db.credentials[username] = Credential{PasswordHash: hash, UserID: userID, Roles: roles}
	return nil
}

// Authenticate checks a username and password
func (db *DB) Authenticate(username, password string) (Credential, bool) {
	cred, ok := db.credentials[username]
	if !ok || bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(password)) != nil {
		return Credential{}, false
	}
	return cred, true
}

// SeedOptions controls Seed
type SeedOptions struct {
	// Count is the number of generated rows per table
	Count int
	// Seed makes the generated data reproducible; 0 is random
	Seed uint64
	Now  time.Time
}

// Seed fills db with generated data and the logins admin/admin and
// viewer/viewer.
func Seed(db *DB, opts SeedOptions) {
	if opts.Count <= 0 {
		opts.Count = 5
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	f := gofakeit.New(opts.Seed)

	admin := db.Roles.Insert(func(id shared.ID) identity.Role {
		return identity.Role{ID: id, Name: "Administrator", Description: "Full access", Permissions: []string{"*"}}
	})
	viewer := db.Roles.Insert(func(id shared.ID) identity.Role {
		return identity.Role{ID: id, Name: "Viewer", Description: "Read-only access", Permissions: []string{"read"}}
	})

	for i := 0; i < 3; i++ {
		db.Levels.Insert(func(id shared.ID) identity.Level {
			return identity.Level{ID: id, Name: f.JobLevel(), Rank: i}
		})
	}

	adminUser := db.Users.Insert(func(id shared.ID) identity.User {
		return identity.User{ID: id, Username: "admin", Email: "admin@example.com", FullName: "Administrator", RoleID: admin.ID, IsActive: true}
	})
	viewerUser := db.Users.Insert(func(id shared.ID) identity.User {
		return identity.User{ID: id, Username: "viewer", Email: "viewer@example.com", FullName: f.Name(), RoleID: viewer.ID, IsActive: true}
	})
	_ = db.AddLogin("admin", "admin", adminUser.ID, RoleAdmin)
	_ = db.AddLogin("viewer", "viewer", viewerUser.ID, RoleViewer)
	for i := 0; i < opts.Count; i++ {
		db.Users.Insert(func(id shared.ID) identity.User {
			return identity.User{ID: id, Username: f.Username(), Email: f.Email(), FullName: f.Name(), RoleID: viewer.ID, IsActive: f.Bool()}
		})
	}

	year := opts.Now.Year()
	var current finance.FiscalYear
	for y := year - 1; y <= year; y++ {
		current = db.FiscalYears.Insert(func(id shared.ID) finance.FiscalYear {
			return finance.FiscalYear{
				ID:        id,
				Name:      "FY" + strconv.Itoa(y),
				StartDate: fmt.Sprintf("%d-01-01", y),
				EndDate:   fmt.Sprintf("%d-12-31", y),
				IsClosed:  y < year,
			}
		})
	}

	seedAccounts(db, f, opts.Count)

	for i := 0; i < opts.Count; i++ {
		amount := decimal.NewFromFloat(f.Price(1000, 50000)).Round(2)
		db.Budgets.Insert(func(id shared.ID) finance.Budget {
			return finance.Budget{
				ID:           id,
				Name:         f.BuzzWord() + " Budget",
				FiscalYearID: current.ID,
				Amount:       amount,
				Spent:        amount.Mul(decimal.NewFromFloat(f.Float64Range(0, 1))).Round(2),
				Status:       "active",
			}
		})
	}

	for i := 0; i < opts.Count; i++ {
		db.Items.Insert(func(id shared.ID) inventory.Item {
			return inventory.Item{
				ID:        id,
				SKU:       strings.ToUpper(f.LetterN(3)) + "-" + strconv.Itoa(f.Number(1000, 9999)),
				Name:      f.ProductName(),
				Unit:      "pcs",
				UnitPrice: decimal.NewFromFloat(f.Price(1, 500)).Round(2),
				Quantity:  decimal.NewFromInt(int64(f.Number(0, 250))),
			}
		})
	}
}

func seedAccounts(db *DB, f *gofakeit.Faker, count int) {
	code := 1000
	for i := 0; i < max(1, count/2); i++ {
		top := db.Accounts.Insert(func(id shared.ID) finance.Account {
			return finance.Account{ID: id, Code: strconv.Itoa(code), Name: f.Company(), Type: finance.AccountTypeMain, IsActive: true}
		})
		code += 100

		parent := top.ID
		sub := db.Accounts.Insert(func(id shared.ID) finance.Account {
			return finance.Account{ID: id, Code: strconv.Itoa(code), Name: f.BuzzWord(), Type: finance.AccountTypeSub, ParentID: &parent, IsActive: true}
		})
		code += 10

		subID := sub.ID
		ledger := db.Accounts.Insert(func(id shared.ID) finance.Account {
			return finance.Account{ID: id, Code: strconv.Itoa(code), Name: f.Word() + " ledger", Type: finance.AccountTypeLedger, ParentID: &subID, IsActive: true}
		})
		code += 10

		debit := decimal.NewFromFloat(f.Price(100, 10000)).Round(2)
		credit := decimal.NewFromFloat(f.Price(0, 5000)).Round(2)
		db.Balances.Insert(func(id shared.ID) finance.AccountBalance {
			return finance.AccountBalance{
				AccountID:   ledger.ID,
				AccountName: ledger.Name,
				Debit:       debit,
				Credit:      credit,
				Balance:     debit.Sub(credit),
			}
		})
	}
}
