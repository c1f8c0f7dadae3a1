package sqlite

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

// demoSeller describes a seller with its properties for demo seeding.
type demoSeller struct {
	seller     types.CreateSellerRequest
	properties []types.CreatePropertyRequest
}

// demoBuyer describes a buyer and the deal opened on one of the demo
// properties, addressed by position in the seeded property list.
type demoBuyer struct {
	buyer         types.CreateBuyerRequest
	propertyIndex int
	deal          types.CreateDealRequest
	activities    []types.CreateActivityRequest
}

func ptr[T any](v T) *T { return &v }

var demoSellers = []demoSeller{
	{
		seller: types.CreateSellerRequest{
			Name:              "Giulia Rossi",
			Company:           "Rossi Hotels Srl",
			Email:             "giulia@rossihotels.it",
			Phone:             "+39 055 123456",
			Role:              "Titolare",
			ContactPreference: types.ContactEmail,
		},
		properties: []types.CreatePropertyRequest{
			{
				Name:            "Hotel Bellavista",
				Code:            "FI-001",
				Address:         types.Address{Street: "Via dei Colli", Number: "12", City: "Firenze", CAP: "50125", Province: "FI"},
				Region:          "Toscana",
				Type:            types.PropertyHotel,
				Category:        types.Category4Star,
				Rooms:           42,
				Beds:            90,
				Condition:       types.ConditionExcellent,
				PriceMin:        6000000,
				PriceMax:        7500000,
				Tags:            []string{"centro storico", "vista"},
				OperationTypes:  []types.OperationType{types.OperationBuildingSale, types.OperationBusinessSale},
				HasIncarico:     true,
				IncaricoPercent: ptr(3.0),
			},
			{
				Name:           "B&B Il Glicine",
				Address:        types.Address{Street: "Borgo Pinti", Number: "8", City: "Firenze", CAP: "50121", Province: "FI"},
				Region:         "Toscana",
				Type:           types.PropertyBnB,
				Rooms:          6,
				Beds:           12,
				Condition:      types.ConditionGood,
				PriceMin:       800000,
				PriceMax:       950000,
				OperationTypes: []types.OperationType{types.OperationBusinessLease},
			},
		},
	},
	{
		seller: types.CreateSellerRequest{
			Name:  "Marco Bianchi",
			Email: "marco.bianchi@example.it",
			Phone: "+39 0471 987654",
		},
		properties: []types.CreatePropertyRequest{
			{
				Name:           "Residence Dolomiti",
				Address:        types.Address{Street: "Via Roma", Number: "3", City: "Bolzano", CAP: "39100", Province: "BZ"},
				Region:         "Trentino-Alto Adige",
				Type:           types.PropertyResidence,
				Category:       types.Category3Star,
				Rooms:          24,
				Beds:           60,
				Condition:      types.ConditionToRenovate,
				PriceMin:       2500000,
				PriceMax:       3200000,
				Tags:           []string{"montagna"},
				OperationTypes: []types.OperationType{types.OperationCompanySale},
			},
		},
	},
}

var demoBuyers = []demoBuyer{
	{
		buyer: types.CreateBuyerRequest{
			Name:           "Alpine Hospitality Fund",
			Company:        "AHF Sgr",
			Email:          "deals@ahf.example.com",
			BudgetMin:      2000000,
			BudgetMax:      8000000,
			Zones:          []string{"Toscana", "Trentino-Alto Adige"},
			PreferredTypes: []types.PropertyType{types.PropertyHotel, types.PropertyResidence},
			Level:          types.LevelFund,
			Tags:           []string{"vista"},
		},
		propertyIndex: 0,
		deal: types.CreateDealRequest{
			Status:         types.StatusOfferSent,
			Subject:        types.SubjectSale,
			PriceRequested: ptr(int64(7500000)),
			PriceOffered:   ptr(int64(6800000)),
		},
		activities: []types.CreateActivityRequest{
			{Type: types.ActivityCall, Description: "Prima telefonata, interesse confermato"},
			{Type: types.ActivityAppointment, Description: "Sopralluogo in struttura"},
		},
	},
	{
		buyer: types.CreateBuyerRequest{
			Name:      "Luca Verdi",
			Email:     "luca.verdi@example.it",
			BudgetMin: 500000,
			BudgetMax: 1000000,
			Zones:     []string{"Firenze"},
			Level:     types.LevelPrivate,
		},
		propertyIndex: 1,
		deal: types.CreateDealRequest{
			Subject: types.SubjectLease,
		},
		activities: []types.CreateActivityRequest{
			{Type: types.ActivityNote, Description: "Richiesta informazioni via sito"},
		},
	},
}

// SeedDemo fills an empty database with a small demo dataset through the
// repositories. It does nothing when any seller, buyer, or property exists,
// and reports whether it seeded.
func (b *Backend) SeedDemo() (bool, error) {
	for _, repo := range []interface{ Count() (int, error) }{b.sellers, b.buyers, b.properties} {
		n, err := repo.Count()
		if err != nil {
			return false, fmt.Errorf("checking for existing data: %w", err)
		}
		if n > 0 {
			return false, nil
		}
	}

	var propertyIDs []string
	for _, ds := range demoSellers {
		seller, err := b.sellers.Create(ds.seller)
		if err != nil {
			return false, fmt.Errorf("seeding seller %s: %w", ds.seller.Name, err)
		}
		for _, req := range ds.properties {
			req.SellerID = seller.ID
			if req.HasIncarico && req.IncaricoExpiry == nil {
				expiry := types.NewDate(b.Now().AddDate(0, 0, 20))
				req.IncaricoExpiry = &expiry
			}
			prop, err := b.properties.Create(req)
			if err != nil {
				return false, fmt.Errorf("seeding property %s: %w", req.Name, err)
			}
			propertyIDs = append(propertyIDs, prop.ID)
		}
	}

	for _, demo := range demoBuyers {
		buyer, err := b.buyers.Create(demo.buyer)
		if err != nil {
			return false, fmt.Errorf("seeding buyer %s: %w", demo.buyer.Name, err)
		}
		deal := demo.deal
		deal.BuyerID = buyer.ID
		deal.PropertyID = propertyIDs[demo.propertyIndex]
		created, err := b.deals.Create(deal)
		if err != nil {
			return false, fmt.Errorf("seeding deal for %s: %w", demo.buyer.Name, err)
		}
		for _, act := range demo.activities {
			act.DealID = created.ID
			if _, err := b.activities.Create(act); err != nil {
				return false, fmt.Errorf("seeding activity for %s: %w", demo.buyer.Name, err)
			}
		}
	}

	b.logger.Info("seeded demo data",
		zap.Int("sellers", len(demoSellers)),
		zap.Int("properties", len(propertyIDs)),
		zap.Int("buyers", len(demoBuyers)),
	)
	return true, nil
}
