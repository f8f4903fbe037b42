package service

import (
	"context"
	"errors"
	"fmt"

	"powerbill/internal/domain"
	"powerbill/internal/repository"
)

// consumptionHistoryLimit caps the dashboard trend at the last three cycles.
const consumptionHistoryLimit = 3

const dateLabelLayout = "January 2, 2006"

// DashboardView is the complete dashboard document. It keeps the same shape
// whether or not the user has any billing history.
type DashboardView struct {
	ConsumerInfo ConsumerInfo `json:"consumerInfo"`
	CurrentBill  CurrentBill  `json:"currentBill"`
}

type ConsumerInfo struct {
	ConsumerID     string `json:"consumerId"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	MeterNumber    string `json:"meterNumber"`
	SupplyType     string `json:"supplyType"`
	SanctionedLoad string `json:"sanctionedLoad"`
}

type CurrentBill struct {
	ID                 int64              `json:"id"`
	Amount             float64            `json:"amount"`
	DueDate            string             `json:"dueDate"`
	Period             string             `json:"period"`
	Status             domain.BillStatus  `json:"status"`
	SlabCharges        []SlabCharge       `json:"slabCharges"`
	BillComponents     BillComponents     `json:"billComponents"`
	ConsumptionHistory []ConsumptionEntry `json:"consumptionHistory"`
}

type SlabCharge struct {
	Range  string  `json:"range"`
	Rate   float64 `json:"rate"`
	Units  int     `json:"units"`
	Amount float64 `json:"amount"`
}

type BillComponents struct {
	EnergyCharges float64 `json:"energyCharges"`
	FixedCharges  float64 `json:"fixedCharges"`
	FuelSurcharge float64 `json:"fuelSurcharge"`
	TaxGST        float64 `json:"taxGST"`
	Subsidy       float64 `json:"subsidy"`
	NetAmount     float64 `json:"netAmount"`
}

// ConsumptionEntry is one point of the trend, oldest first.
type ConsumptionEntry struct {
	Month string `json:"month"`
	Units int    `json:"units"`
}

// DashboardService assembles the dashboard document for a signed-in user.
type DashboardService interface {
	Dashboard(ctx context.Context, userID int64) (*DashboardView, error)
}

type dashboardService struct {
	users repository.UserRepository
	bills repository.BillRepository
}

func NewDashboardService(users repository.UserRepository, bills repository.BillRepository) DashboardService {
	return &dashboardService{users: users, bills: bills}
}

func (s *dashboardService) Dashboard(ctx context.Context, userID int64) (*DashboardView, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	view := &DashboardView{
		ConsumerInfo: ConsumerInfo{
			ConsumerID:     user.ConsumerID,
			Name:           user.Name,
			Email:          user.Email,
			Phone:          user.Phone,
			MeterNumber:    user.MeterNumber,
			SupplyType:     user.SupplyType,
			SanctionedLoad: user.SanctionedLoad,
		},
	}

	bill, err := s.bills.GetLatest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if bill == nil {
		view.CurrentBill = placeholderBill()
		return view, nil
	}

	slabs, err := s.bills.ListSlabs(ctx, bill.ID)
	if err != nil {
		return nil, err
	}

	points, err := s.bills.RecentConsumption(ctx, userID, consumptionHistoryLimit)
	if err != nil {
		return nil, err
	}

	current := CurrentBill{
		ID:      bill.ID,
		Amount:  bill.NetAmount,
		DueDate: bill.DueDate.Format(dateLabelLayout),
		Period: fmt.Sprintf("%s - %s",
			bill.PeriodStart.Format(dateLabelLayout),
			bill.PeriodEnd.Format(dateLabelLayout)),
		Status:      bill.Status,
		SlabCharges: make([]SlabCharge, 0, len(slabs)),
		BillComponents: BillComponents{
			EnergyCharges: bill.EnergyCharges,
			FixedCharges:  bill.FixedCharges,
			FuelSurcharge: bill.FuelSurcharge,
			TaxGST:        bill.TaxAmount,
			// subsidy reduces the net total
			Subsidy:   -bill.SubsidyAmount,
			NetAmount: bill.NetAmount,
		},
		ConsumptionHistory: make([]ConsumptionEntry, 0, len(points)),
	}

	for _, slab := range slabs {
		current.SlabCharges = append(current.SlabCharges, SlabCharge{
			Range:  slab.Range,
			Rate:   slab.Rate,
			Units:  slab.Units,
			Amount: slab.Amount,
		})
	}

	// the store returns newest first; the trend reads oldest first
	for i := len(points) - 1; i >= 0; i-- {
		current.ConsumptionHistory = append(current.ConsumptionHistory, ConsumptionEntry{
			Month: points[i].PeriodEnd.Format("Jan"),
			Units: points[i].Units,
		})
	}

	view.CurrentBill = current
	return view, nil
}

// placeholderBill keeps the response shape uniform for users without bills.
func placeholderBill() CurrentBill {
	return CurrentBill{
		Status:             domain.BillStatusNone,
		Period:             "No bills found",
		SlabCharges:        []SlabCharge{},
		ConsumptionHistory: []ConsumptionEntry{},
	}
}
