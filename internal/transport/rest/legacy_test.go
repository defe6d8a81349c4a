package rest_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/prasetyow/expense-reimbursement/internal/auth"
	authPostgres "github.com/prasetyow/expense-reimbursement/internal/auth/postgres"
	"github.com/prasetyow/expense-reimbursement/internal/reimbursement"
	reimbPostgres "github.com/prasetyow/expense-reimbursement/internal/reimbursement/postgres"
	"github.com/prasetyow/expense-reimbursement/internal/transport/rest"
)

func TestLegacyRoutes(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Legacy Routes Suite")
}

type SQLiteUser struct {
	ID           int64     `gorm:"primaryKey"`
	Username     string    `gorm:"column:username;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"column:role;default:'employee'"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (SQLiteUser) TableName() string {
	return "users"
}

type SQLiteReimbursement struct {
	ID          int64      `gorm:"primaryKey"`
	UserID      int64      `gorm:"column:user_id;not null"`
	AmountCents int64      `gorm:"column:amount_cents;not null"`
	Description string     `gorm:"column:description;not null"`
	Status      string     `gorm:"column:status;default:'pending'"`
	SubmittedAt time.Time  `gorm:"column:submitted_at"`
	ProcessedAt *time.Time `gorm:"column:processed_at"`
	ProcessedBy *int64     `gorm:"column:processed_by"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (SQLiteReimbursement) TableName() string {
	return "reimbursements"
}

var _ = Describe("Legacy Routes Integration", func() {
	var (
		db      *gorm.DB
		handler *rest.LegacyHandler
	)

	postJSON := func(target string, payload interface{}) (*httptest.ResponseRecorder, *http.Request) {
		body, err := json.Marshal(payload)
		Expect(err).NotTo(HaveOccurred())
		req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return httptest.NewRecorder(), req
	}

	registerUser := func(username, role string) {
		w, req := postJSON("/register", map[string]string{
			"username": username,
			"password": "test_password",
			"role":     role,
		})
		handler.Register(w, req)
		Expect(w.Code).To(Equal(http.StatusOK))
	}

	loginUser := func(username string) string {
		w, req := postJSON("/login", map[string]string{
			"username": username,
			"password": "test_password",
		})
		handler.Login(w, req)
		Expect(w.Code).To(Equal(http.StatusOK))
		token, err := io.ReadAll(w.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(token).NotTo(BeEmpty())
		return string(token)
	}

	createClaim := func(token string, amount float64, description string) reimbursement.Reimbursement {
		w, req := postJSON("/reimbursement", map[string]interface{}{
			"token":       token,
			"amount":      amount,
			"description": description,
		})
		handler.CreateReimbursement(w, req)
		Expect(w.Code).To(Equal(http.StatusOK))

		var created reimbursement.Reimbursement
		Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
		return created
	}

	editClaim := func(token string, id int64, status string) *httptest.ResponseRecorder {
		w, req := postJSON("/reimbursement/edit", map[string]interface{}{
			"token":  token,
			"id":     id,
			"status": status,
		})
		handler.EditReimbursement(w, req)
		return w
	}

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		slog.SetDefault(slogger)

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteUser{}, &SQLiteReimbursement{})
		Expect(err).NotTo(HaveOccurred())

		tokenGen := auth.NewJWTTokenGenerator("legacy-routes-integration-test-secret", time.Hour)
		authSvc := auth.NewService(authPostgres.NewRepository(db), tokenGen, bcrypt.MinCost)
		reimbSvc := reimbursement.NewService(reimbPostgres.NewReimbursementRepository(db), nil, slogger)
		handler = rest.NewLegacyHandler(authSvc, reimbSvc)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("POST /register", func() {
		It("should register a new user", func() {
			w, req := postJSON("/register", map[string]string{
				"username": "alice",
				"password": "test_password",
			})

			handler.Register(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var created auth.User
			Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
			Expect(created.Username).To(Equal("alice"))
			Expect(created.Role).To(Equal(auth.RoleEmployee))
		})

		It("should reject a duplicate username with 400", func() {
			registerUser("alice", "")

			w, req := postJSON("/register", map[string]string{
				"username": "alice",
				"password": "other_password",
			})
			handler.Register(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should reject a missing password with 400", func() {
			w, req := postJSON("/register", map[string]string{
				"username": "alice",
			})
			handler.Register(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should return 500 when the store is unavailable", func() {
			Expect(db.Exec("DROP TABLE users").Error).To(Succeed())

			w, req := postJSON("/register", map[string]string{
				"username": "alice",
				"password": "test_password",
			})
			handler.Register(w, req)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("POST /login", func() {
		BeforeEach(func() {
			registerUser("alice", "")
		})

		It("should return the token as plain text", func() {
			token := loginUser("alice")

			Expect(token).NotTo(BeEmpty())
		})

		It("should return 401 for an unknown username", func() {
			w, req := postJSON("/login", map[string]string{
				"username": "nobody",
				"password": "test_password",
			})
			handler.Login(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should return 401 for a wrong password", func() {
			w, req := postJSON("/login", map[string]string{
				"username": "alice",
				"password": "wrong_password",
			})
			handler.Login(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("POST /reimbursement", func() {
		var employeeToken string

		BeforeEach(func() {
			registerUser("alice", "")
			employeeToken = loginUser("alice")
		})

		It("should create a pending claim and convert the amount to cents", func() {
			created := createClaim(employeeToken, 42.50, "conference travel")

			Expect(created.Status).To(Equal(reimbursement.StatusPending))
			Expect(created.AmountCents).To(Equal(int64(4250)))
			Expect(created.Description).To(Equal("conference travel"))
		})

		It("should return 401 without a token", func() {
			w, req := postJSON("/reimbursement", map[string]interface{}{
				"amount":      10.0,
				"description": "lunch",
			})
			handler.CreateReimbursement(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should return 401 for a garbage token", func() {
			w, req := postJSON("/reimbursement", map[string]interface{}{
				"token":       "not-a-token",
				"amount":      10.0,
				"description": "lunch",
			})
			handler.CreateReimbursement(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should return 401 for a non-positive amount", func() {
			w, req := postJSON("/reimbursement", map[string]interface{}{
				"token":       employeeToken,
				"amount":      0.0,
				"description": "lunch",
			})
			handler.CreateReimbursement(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("POST /reimbursement/edit", func() {
		var (
			employeeToken string
			managerToken  string
			claim         reimbursement.Reimbursement
		)

		BeforeEach(func() {
			registerUser("alice", "")
			registerUser("bob", "manager")
			employeeToken = loginUser("alice")
			managerToken = loginUser("bob")
			claim = createClaim(employeeToken, 100.00, "new laptop dock")
		})

		It("should let a manager approve a pending claim", func() {
			w := editClaim(managerToken, claim.ID, "APPROVED")

			Expect(w.Code).To(Equal(http.StatusOK))
			var updated reimbursement.Reimbursement
			Expect(json.NewDecoder(w.Body).Decode(&updated)).To(Succeed())
			Expect(updated.Status).To(Equal(reimbursement.StatusApproved))
			Expect(updated.ProcessedBy).NotTo(BeNil())
		})

		It("should let a manager deny a pending claim", func() {
			w := editClaim(managerToken, claim.ID, "denied")

			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("should return 401 for a bad token", func() {
			w := editClaim("not-a-token", claim.ID, "approved")

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("should return 403 for a non-manager", func() {
			w := editClaim(employeeToken, claim.ID, "approved")

			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("should return 403 when a manager decides their own claim", func() {
			ownClaim := createClaim(managerToken, 50.00, "team lunch")

			w := editClaim(managerToken, ownClaim.ID, "approved")

			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("should return 404 for a missing claim", func() {
			w := editClaim(managerToken, 99999, "approved")

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("should return 400 when the claim was already decided", func() {
			Expect(editClaim(managerToken, claim.ID, "approved").Code).To(Equal(http.StatusOK))

			w := editClaim(managerToken, claim.ID, "denied")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("should return 400 for an invalid target status", func() {
			w := editClaim(managerToken, claim.ID, "pending")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("full lifecycle", func() {
		It("should keep a decided claim immutable for every later decision", func() {
			registerUser("alice", "")
			registerUser("bob", "manager")
			registerUser("carol", "manager")
			employeeToken := loginUser("alice")
			bobToken := loginUser("bob")
			carolToken := loginUser("carol")

			claim := createClaim(employeeToken, 19.99, fmt.Sprintf("parking on %s", time.Now().Format("2006-01-02")))

			Expect(editClaim(bobToken, claim.ID, "denied").Code).To(Equal(http.StatusOK))
			Expect(editClaim(carolToken, claim.ID, "approved").Code).To(Equal(http.StatusBadRequest))

			var stored SQLiteReimbursement
			Expect(db.First(&stored, claim.ID).Error).To(Succeed())
			Expect(stored.Status).To(Equal(reimbursement.StatusDenied))
		})
	})
})
