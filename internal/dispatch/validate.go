package dispatch

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

type enum interface{ Valid() bool }

// newValidator returns a validator that knows the closed enumerations of
// package types (tag "enum") and the cross-field rules of each request.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("enum", func(fl validator.FieldLevel) bool {
		e, ok := fl.Field().Interface().(enum)
		return !ok || e.Valid()
	})

	v.RegisterStructValidation(validateCreateProperty, types.CreatePropertyRequest{})
	v.RegisterStructValidation(validateUpdateProperty, types.UpdatePropertyRequest{})
	v.RegisterStructValidation(validateCreateBuyer, types.CreateBuyerRequest{})
	v.RegisterStructValidation(validateUpdateBuyer, types.UpdateBuyerRequest{})
	v.RegisterStructValidation(validateUpdateSeller, types.UpdateSellerRequest{})
	v.RegisterStructValidation(validateUpdateDeal, types.UpdateDealRequest{})
	v.RegisterStructValidation(validateUpdateActivity, types.UpdateActivityRequest{})
	v.RegisterStructValidation(validateUpdateTag, types.UpdateTagRequest{})
	return v
}

// decode unmarshals payload into a T and validates it. An empty payload
// decodes to the zero value.
func decode[T any](d *Dispatcher, payload json.RawMessage) (T, error) {
	var v T
	if len(payload) > 0 && string(payload) != "null" {
		if err := json.Unmarshal(payload, &v); err != nil {
			return v, fmt.Errorf("%w: %v", types.ErrValidation, err)
		}
	}
	if reflect.ValueOf(v).Kind() == reflect.Struct {
		if err := d.validate.Struct(v); err != nil {
			return v, validationError(err)
		}
	}
	return v, nil
}

// validationError flattens validator failures into one ErrValidation.
func validationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %v", types.ErrValidation, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", types.ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "contains":
		return fmt.Sprintf("%s must contain %q", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "enum":
		return fmt.Sprintf("%s has unknown value %v", fe.Field(), fe.Value())
	case "gtefield":
		return fmt.Sprintf("%s must not be below %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}
}

func validateCreateProperty(sl validator.StructLevel) {
	req := sl.Current().Interface().(types.CreatePropertyRequest)
	if len(strings.TrimSpace(req.Name)) < 2 {
		sl.ReportError(req.Name, "name", "Name", "min", "2")
	}
	if req.PriceMax > 0 && req.PriceMax < req.PriceMin {
		sl.ReportError(req.PriceMax, "priceMax", "PriceMax", "gtefield", "priceMin")
	}
}

func validateUpdateProperty(sl validator.StructLevel) {
	req := sl.Current().Interface().(types.UpdatePropertyRequest)
	requireID(sl, req.ID)
	checkName(sl, req.Name)
	checkEnum(sl, req.Type, "type")
	checkEnum(sl, req.Category, "category")
	checkEnum(sl, req.Condition, "condition")
	if ops, ok := req.OperationTypes.Get(); ok {
		for _, op := range ops {
			if !op.Valid() {
				sl.ReportError(op, "operationTypes", "OperationTypes", "enum", "")
			}
		}
	}
	checkRange(sl, req.PriceMin, req.PriceMax, "priceMax", "priceMin")
	checkNonNegative(sl, req.PriceMin, "priceMin")
	checkNonNegative(sl, req.PriceMax, "priceMax")
	checkNonNegative(sl, req.Rooms, "rooms")
	checkNonNegative(sl, req.Beds, "beds")
	checkPercent(sl, req.IncaricoPercent, "incaricoPercentuale")
}

func validateCreateBuyer(sl validator.StructLevel) {
	req := sl.Current().Interface().(types.CreateBuyerRequest)
	if len(strings.TrimSpace(req.Name)) < 2 {
		sl.ReportError(req.Name, "name", "Name", "min", "2")
	}
	if req.BudgetMax > 0 && req.BudgetMax < req.BudgetMin {
		sl.ReportError(req.BudgetMax, "budgetMax", "BudgetMax", "gtefield", "budgetMin")
	}
}

func validateUpdateBuyer(sl validator.StructLevel) {
	req := sl.Current().Interface().(types.UpdateBuyerRequest)
	requireID(sl, req.ID)
	checkName(sl, req.Name)
	checkEmail(sl, req.Email)
	checkRange(sl, req.BudgetMin, req.BudgetMax, "budgetMax", "budgetMin")
	checkNonNegative(sl, req.BudgetMin, "budgetMin")
	checkNonNegative(sl, req.BudgetMax, "budgetMax")
	if level, ok := req.Level.Get(); ok && level != "" && !level.Valid() {
		sl.ReportError(level, "level", "Level", "enum", "")
	}
	if pts, ok := req.PreferredTypes.Get(); ok {
		for _, pt := range pts {
			if !pt.Valid() {
				sl.ReportError(pt, "preferredTypes", "PreferredTypes", "enum", "")
			}
		}
	}
}

func validateUpdateSeller(sl validator.StructLevel) {
	req := sl.Current().Interface().(types.UpdateSellerRequest)
	requireID(sl, req.ID)
	checkName(sl, req.Name)
	checkEmail(sl, req.Email)
	checkEnum(sl, req.ContactPreference, "contactPreference")
}

func validateUpdateDeal(sl validator.StructLevel) {
	req := sl.Current().Interface().(types.UpdateDealRequest)
	requireID(sl, req.ID)
	checkEnum(sl, req.Status, "status")
	checkEnum(sl, req.Subject, "oggetto")
	checkEnum(sl, req.BuyerPayment, "pagamentoCompratore")
	checkEnum(sl, req.SellerPayment, "pagamentoVenditore")
	checkPercent(sl, req.BuyerCommission, "provvigioneCompratore")
	checkPercent(sl, req.SellerCommission, "provvigioneVenditore")
	for field, opt := range map[string]types.Optional[*int64]{
		"prezzoRichiesto": req.PriceRequested,
		"priceOffered":    req.PriceOffered,
		"priceNegotiated": req.PriceNegotiated,
	} {
		if p, ok := opt.Get(); ok && p != nil && *p < 0 {
			sl.ReportError(*p, field, field, "gte", "0")
		}
	}
}

func validateUpdateActivity(sl validator.StructLevel) {
	req := sl.Current().Interface().(types.UpdateActivityRequest)
	requireID(sl, req.ID)
	checkEnum(sl, req.Type, "type")
	if desc, ok := req.Description.Get(); ok && strings.TrimSpace(desc) == "" {
		sl.ReportError(desc, "description", "Description", "required", "")
	}
}

func validateUpdateTag(sl validator.StructLevel) {
	req := sl.Current().Interface().(types.UpdateTagRequest)
	requireID(sl, req.ID)
	if name, ok := req.Name.Get(); ok && strings.TrimSpace(name) == "" {
		sl.ReportError(name, "name", "Name", "required", "")
	}
}

func requireID(sl validator.StructLevel, id string) {
	if strings.TrimSpace(id) == "" {
		sl.ReportError(id, "id", "ID", "required", "")
	}
}

func checkName(sl validator.StructLevel, name types.Optional[string]) {
	if v, ok := name.Get(); ok && len(strings.TrimSpace(v)) < 2 {
		sl.ReportError(v, "name", "Name", "min", "2")
	}
}

func checkEmail(sl validator.StructLevel, email types.Optional[string]) {
	if v, ok := email.Get(); ok && !strings.Contains(v, "@") {
		sl.ReportError(v, "email", "Email", "contains", "@")
	}
}

func checkEnum[T enum](sl validator.StructLevel, opt types.Optional[T], field string) {
	if v, ok := opt.Get(); ok && !v.Valid() {
		sl.ReportError(v, field, field, "enum", "")
	}
}

func checkPercent(sl validator.StructLevel, opt types.Optional[*float64], field string) {
	p, ok := opt.Get()
	if !ok || p == nil {
		return
	}
	if *p < 0 {
		sl.ReportError(*p, field, field, "gte", "0")
	}
	if *p > 100 {
		sl.ReportError(*p, field, field, "lte", "100")
	}
}

func checkNonNegative[T ~int | ~int64](sl validator.StructLevel, opt types.Optional[T], field string) {
	if v, ok := opt.Get(); ok && v < 0 {
		sl.ReportError(v, field, field, "gte", "0")
	}
}

func checkRange(sl validator.StructLevel, lo, hi types.Optional[int64], hiField, loField string) {
	l, lok := lo.Get()
	h, hok := hi.Get()
	if lok && hok && h > 0 && h < l {
		sl.ReportError(h, hiField, hiField, "gtefield", loField)
	}
}
