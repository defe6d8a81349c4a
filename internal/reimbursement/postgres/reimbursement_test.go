package postgres

import (
	"testing"
	"time"

	reimbDatamodel "github.com/prasetyow/expense-reimbursement/internal/core/datamodel/reimbursement"
	"github.com/prasetyow/expense-reimbursement/internal/reimbursement"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestReimbursementRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ReimbursementRepository Suite")
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

var _ = Describe("ReimbursementRepository", func() {
	var (
		db   *gorm.DB
		repo reimbursement.RepositoryAPI
	)

	newPendingClaim := func(userID, amountCents int64) *reimbDatamodel.Reimbursement {
		return &reimbDatamodel.Reimbursement{
			UserID:      userID,
			AmountCents: amountCents,
			Description: "Test claim",
			Status:      reimbursement.StatusPending,
			SubmittedAt: time.Now(),
			CreatedAt:   time.Now(),
			UpdatedAt:   time.Now(),
		}
	}

	BeforeEach(func() {
		var err error

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&SQLiteReimbursement{})
		Expect(err).NotTo(HaveOccurred())

		repo = NewReimbursementRepository(db)
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		err = sqlDB.Close()
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Create", func() {
		It("should create a claim and assign an ID", func() {
			claim := newPendingClaim(1, 12500)

			err := repo.Create(claim)
			Expect(err).NotTo(HaveOccurred())
			Expect(claim.ID).To(BeNumerically(">", 0))
		})
	})

	Describe("GetByID", func() {
		It("should return the stored claim", func() {
			claim := newPendingClaim(1, 12500)
			Expect(repo.Create(claim)).To(Succeed())

			found, err := repo.GetByID(claim.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.UserID).To(Equal(int64(1)))
			Expect(found.AmountCents).To(Equal(int64(12500)))
			Expect(found.Status).To(Equal(reimbursement.StatusPending))
		})

		It("should return ErrReimbursementNotFound for a missing ID", func() {
			_, err := repo.GetByID(999)
			Expect(err).To(MatchError(reimbursement.ErrReimbursementNotFound))
		})
	})

	Describe("GetAll", func() {
		It("should return claims in submission order", func() {
			first := newPendingClaim(1, 100)
			first.SubmittedAt = time.Now().Add(-2 * time.Hour)
			second := newPendingClaim(2, 200)
			second.SubmittedAt = time.Now().Add(-1 * time.Hour)

			Expect(repo.Create(second)).To(Succeed())
			Expect(repo.Create(first)).To(Succeed())

			records, err := repo.GetAll(20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
			Expect(records[0].ID).To(Equal(first.ID))
			Expect(records[1].ID).To(Equal(second.ID))
		})

		It("should respect limit and offset", func() {
			for i := 0; i < 5; i++ {
				claim := newPendingClaim(1, 100)
				claim.SubmittedAt = time.Now().Add(time.Duration(i) * time.Minute)
				Expect(repo.Create(claim)).To(Succeed())
			}

			records, err := repo.GetAll(2, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(2))
		})
	})

	Describe("GetByStatus", func() {
		It("should return only claims in the requested status", func() {
			pending := newPendingClaim(1, 100)
			decided := newPendingClaim(2, 200)
			decided.Status = reimbursement.StatusApproved

			Expect(repo.Create(pending)).To(Succeed())
			Expect(repo.Create(decided)).To(Succeed())

			records, err := repo.GetByStatus(reimbursement.StatusPending, 20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].ID).To(Equal(pending.ID))
		})
	})

	Describe("GetByUserID", func() {
		It("should return only the requested user's claims", func() {
			mine := newPendingClaim(1, 100)
			theirs := newPendingClaim(2, 200)

			Expect(repo.Create(mine)).To(Succeed())
			Expect(repo.Create(theirs)).To(Succeed())

			records, err := repo.GetByUserID(1, 20, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].UserID).To(Equal(int64(1)))
		})
	})

	Describe("UpdateStatus", func() {
		It("should move a pending claim to approved and record the processor", func() {
			claim := newPendingClaim(1, 100)
			Expect(repo.Create(claim)).To(Succeed())

			won, err := repo.UpdateStatus(claim.ID, reimbursement.StatusApproved, 2, time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(won).To(BeTrue())

			updated, err := repo.GetByID(claim.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Status).To(Equal(reimbursement.StatusApproved))
			Expect(updated.ProcessedBy).NotTo(BeNil())
			Expect(*updated.ProcessedBy).To(Equal(int64(2)))
			Expect(updated.ProcessedAt).NotTo(BeNil())
		})

		It("should report a lost update when the claim was already decided", func() {
			claim := newPendingClaim(1, 100)
			Expect(repo.Create(claim)).To(Succeed())

			won, err := repo.UpdateStatus(claim.ID, reimbursement.StatusApproved, 2, time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(won).To(BeTrue())

			won, err = repo.UpdateStatus(claim.ID, reimbursement.StatusDenied, 3, time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(won).To(BeFalse())

			unchanged, err := repo.GetByID(claim.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(unchanged.Status).To(Equal(reimbursement.StatusApproved))
			Expect(*unchanged.ProcessedBy).To(Equal(int64(2)))
		})

		It("should report a lost update for a missing claim", func() {
			won, err := repo.UpdateStatus(999, reimbursement.StatusApproved, 2, time.Now())
			Expect(err).NotTo(HaveOccurred())
			Expect(won).To(BeFalse())
		})
	})
})
