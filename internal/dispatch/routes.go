package dispatch

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/hotelcrm/pkg/types"
)

// Entity not-found codes.
const (
	codeSellerNotFound     = "SELLER_NOT_FOUND"
	codePropertyNotFound   = "PROPERTY_NOT_FOUND"
	codeBuyerNotFound      = "BUYER_NOT_FOUND"
	codeDealNotFound       = "DEAL_NOT_FOUND"
	codeActivityNotFound   = "ACTIVITY_NOT_FOUND"
	codeTagNotFound        = "TAG_NOT_FOUND"
	codeAttachmentNotFound = "ATTACHMENT_NOT_FOUND"
)

func (d *Dispatcher) handle(operation, notFound string, h handler) {
	d.routes[operation] = route{handler: h, code: operationCode(operation), notFound: notFound}
}

// handleAs registers an operation whose error code prefix differs from its
// name.
func (d *Dispatcher) handleAs(operation, code, notFound string, h handler) {
	d.routes[operation] = route{handler: h, code: code, notFound: notFound}
}

func (d *Dispatcher) register() {
	d.registerSellers()
	d.registerProperties()
	d.registerBuyers()
	d.registerDeals()
	d.registerActivities()
	d.registerTags()
	d.registerAttachments()
	d.registerStats()
}

// decodeID accepts either a bare JSON string or an object with an "id" key.
func decodeID(payload json.RawMessage) (string, error) {
	var id string
	if err := json.Unmarshal(payload, &id); err != nil {
		var obj struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(payload, &obj); err != nil {
			return "", fmt.Errorf("%w: expected an id", types.ErrValidation)
		}
		id = obj.ID
	}
	if strings.TrimSpace(id) == "" {
		return "", fmt.Errorf("%w: id is required", types.ErrValidation)
	}
	return id, nil
}

// found turns a nil lookup result into ErrNotFound.
func found[T any](v *T, err error, entity, id string) (any, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%s %s: %w", entity, id, types.ErrNotFound)
	}
	return v, nil
}

func byID[T any](get func(string) (*T, error), entity string) handler {
	return func(p json.RawMessage) (any, error) {
		id, err := decodeID(p)
		if err != nil {
			return nil, err
		}
		v, err := get(id)
		return found(v, err, entity, id)
	}
}

// withID adapts an id-only mutation that returns no data.
func withID(run func(string) error) handler {
	return func(p json.RawMessage) (any, error) {
		id, err := decodeID(p)
		if err != nil {
			return nil, err
		}
		return nil, run(id)
	}
}

func (d *Dispatcher) registerSellers() {
	repo := d.store.Sellers()
	d.handle("sellers:getAll", "", func(p json.RawMessage) (any, error) {
		f, err := decode[types.SellerFilter](d, p)
		if err != nil {
			return nil, err
		}
		return repo.GetAll(f)
	})
	d.handle("sellers:getById", codeSellerNotFound, byID(repo.GetByID, "seller"))
	d.handle("sellers:create", "", func(p json.RawMessage) (any, error) {
		req, err := decode[types.CreateSellerRequest](d, p)
		if err != nil {
			return nil, err
		}
		return repo.Create(req)
	})
	d.handle("sellers:update", codeSellerNotFound, func(p json.RawMessage) (any, error) {
		req, err := decode[types.UpdateSellerRequest](d, p)
		if err != nil {
			return nil, err
		}
		return repo.Update(req)
	})
	d.handle("sellers:delete", codeSellerNotFound, withID(repo.Delete))
	d.handle("sellers:updateLastContact", codeSellerNotFound, withID(repo.UpdateLastContact))
}

func (d *Dispatcher) registerProperties() {
	repo := d.store.Properties()
	d.handle("properties:getAll", "", func(p json.RawMessage) (any, error) {
		f, err := decode[types.PropertyFilter](d, p)
		if err != nil {
			return nil, err
		}
		return repo.GetAll(f)
	})
	d.handle("properties:getById", codePropertyNotFound, byID(repo.GetByID, "property"))
	d.handle("properties:getBySeller", "", func(p json.RawMessage) (any, error) {
		id, err := decodeID(p)
		if err != nil {
			return nil, err
		}
		return repo.GetBySeller(id)
	})
	d.handle("properties:getCities", "", func(json.RawMessage) (any, error) {
		return repo.GetCities()
	})
	d.handle("properties:getWithIncarico", "", func(json.RawMessage) (any, error) {
		return repo.GetWithIncarico()
	})
	d.handle("properties:create", "", func(p json.RawMessage) (any, error) {
		req, err := decode[types.CreatePropertyRequest](d, p)
		if err != nil {
			return nil, err
		}
		return repo.Create(req)
	})
	d.handle("properties:update", codePropertyNotFound, func(p json.RawMessage) (any, error) {
		req, err := decode[types.UpdatePropertyRequest](d, p)
		if err != nil {
			return nil, err
		}
		return repo.Update(req)
	})
	d.handle("properties:delete", codePropertyNotFound, withID(func(id string) error {
		if d.attachments != nil {
			return d.attachments.DeleteProperty(id)
		}
		return repo.Delete(id)
	}))
}

func (d *Dispatcher) registerBuyers() {
	repo := d.store.Buyers()
	d.handle("buyers:getAll", "", func(p json.RawMessage) (any, error) {
		f, err := decode[types.BuyerFilter](d, p)
		if err != nil {
			return nil, err
		}
		return repo.GetAll(f)
	})
	d.handle("buyers:getById", codeBuyerNotFound, byID(repo.GetByID, "buyer"))
	d.handle("buyers:create", "", func(p json.RawMessage) (any, error) {
		req, err := decode[types.CreateBuyerRequest](d, p)
		if err != nil {
			return nil, err
		}
		return repo.Create(req)
	})
	d.handle("buyers:update", codeBuyerNotFound, func(p json.RawMessage) (any, error) {
		req, err := decode[types.UpdateBuyerRequest](d, p)
		if err != nil {
			return nil, err
		}
		return repo.Update(req)
	})
	d.handle("buyers:delete", codeBuyerNotFound, withID(repo.Delete))
	d.handle("buyers:updateLastContact", codeBuyerNotFound, withID(repo.UpdateLastContact))
}

type dealStatusRequest struct {
	ID     string           `json:"id" validate:"required"`
	Status types.DealStatus `json:"status" validate:"required,enum"`
}

type dealsByStatusRequest struct {
	Status types.DealStatus `json:"status" validate:"required,enum"`
}

func (d *Dispatcher) registerDeals() {
	repo := d.store.Deals()
	d.handle("deals:getAll", "", func(p json.RawMessage) (any, error) {
		f, err := decode[types.DealFilter](d, p)
		if err != nil {
			return nil, err
		}
		return repo.GetAll(f)
	})
	d.handle("deals:getById", codeDealNotFound, byID(repo.GetByID, "deal"))
	d.handle("deals:getByBuyer", "", func(p json.RawMessage) (any, error) {
		id, err := decodeID(p)
		if err != nil {
			return nil, err
		}
		return repo.GetByBuyer(id)
	})
	d.handle("deals:getByProperty", "", func(p json.RawMessage) (any, error) {
		id, err := decodeID(p)
		if err != nil {
			return nil, err
		}
		return repo.GetByProperty(id)
	})
	d.handle("deals:getByStatus", "", func(p json.RawMessage) (any, error) {
		req, err := decode[dealsByStatusRequest](d, p)
		if err != nil {
			return nil, err
		}
		return repo.GetByStatus(req.Status)
	})
	d.handle("deals:create", "", func(p json.RawMessage) (any, error) {
		req, err := decode[types.CreateDealRequest](d, p)
		if err != nil {
			return nil, err
		}
		return repo.Create(req)
	})
	d.handle("deals:update", codeDealNotFound, func(p json.RawMessage) (any, error) {
		req, err := decode[types.UpdateDealRequest](d, p)
		if err != nil {
			return nil, err
		}
		return repo.Update(req)
	})
	d.handle("deals:updateStatus", codeDealNotFound, func(p json.RawMessage) (any, error) {
		req, err := decode[dealStatusRequest](d, p)
		if err != nil {
			return nil, err
		}
		return repo.UpdateStatus(req.ID, req.Status)
	})
	d.handle("deals:delete", codeDealNotFound, withID(repo.Delete))
}

type recentRequest struct {
	Days  int `json:"days" validate:"gte=0"`
	Limit int `json:"limit" validate:"gte=0"`
}

func (d *Dispatcher) registerActivities() {
	repo := d.store.Activities()
	d.handle("activities:getAll", "", func(json.RawMessage) (any, error) {
		return repo.GetAll()
	})
	d.handle("activities:getById", codeActivityNotFound, byID(repo.GetByID, "activity"))
	d.handle("activities:getByDeal", "", func(p json.RawMessage) (any, error) {
		id, err := decodeID(p)
		if err != nil {
			return nil, err
		}
		return repo.GetByDeal(id)
	})
	d.handle("activities:getRecent", "", func(p json.RawMessage) (any, error) {
		req, err := decode[recentRequest](d, p)
		if err != nil {
			return nil, err
		}
		return d.stats.RecentActivities(req.Days, req.Limit)
	})
	d.handle("activities:create", "", func(p json.RawMessage) (any, error) {
		req, err := decode[types.CreateActivityRequest](d, p)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(req.Description) == "" {
			return nil, fmt.Errorf("%w: description is required", types.ErrValidation)
		}
		return repo.Create(req)
	})
	d.handle("activities:update", codeActivityNotFound, func(p json.RawMessage) (any, error) {
		req, err := decode[types.UpdateActivityRequest](d, p)
		if err != nil {
			return nil, err
		}
		return repo.Update(req)
	})
	d.handle("activities:delete", codeActivityNotFound, withID(repo.Delete))
}

func (d *Dispatcher) registerTags() {
	repo := d.store.Tags()
	d.handle("tags:getAll", "", func(json.RawMessage) (any, error) {
		return repo.GetAll()
	})
	d.handle("tags:getById", codeTagNotFound, byID(repo.GetByID, "tag"))
	d.handle("tags:getBuyerTags", "", func(json.RawMessage) (any, error) {
		return repo.GetBuyerTags()
	})
	d.handle("tags:getPropertyTags", "", func(json.RawMessage) (any, error) {
		return repo.GetPropertyTags()
	})
	d.handle("tags:create", "", func(p json.RawMessage) (any, error) {
		req, err := decode[types.CreateTagRequest](d, p)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(req.Name) == "" {
			return nil, fmt.Errorf("%w: name is required", types.ErrValidation)
		}
		return repo.Create(req)
	})
	d.handle("tags:update", codeTagNotFound, func(p json.RawMessage) (any, error) {
		req, err := decode[types.UpdateTagRequest](d, p)
		if err != nil {
			return nil, err
		}
		return repo.Update(req)
	})
	d.handle("tags:delete", codeTagNotFound, withID(repo.Delete))
}

type saveFileRequest struct {
	PropertyID       string `json:"propertyId" validate:"required"`
	OriginalFilename string `json:"originalFilename" validate:"required"`
	FileData         string `json:"fileData" validate:"required"`
}

type openResult struct {
	Path string `json:"path"`
}

func (d *Dispatcher) registerAttachments() {
	repo := d.store.Attachments()
	d.handleAs("propertyAttachments:getByProperty", "PROPERTY_ATTACHMENTS_GET", "", func(p json.RawMessage) (any, error) {
		id, err := decodeID(p)
		if err != nil {
			return nil, err
		}
		return repo.GetByPropertyID(id)
	})
	d.handle("propertyAttachments:create", "", func(p json.RawMessage) (any, error) {
		req, err := decode[types.CreateAttachmentRequest](d, p)
		if err != nil {
			return nil, err
		}
		return repo.Create(req)
	})
	d.handle("propertyAttachments:delete", codeAttachmentNotFound, withID(func(id string) error {
		if d.attachments != nil {
			return d.attachments.Delete(id)
		}
		return repo.Delete(id)
	}))

	if d.attachments == nil {
		return
	}
	d.handle("propertyAttachments:open", codeAttachmentNotFound, func(p json.RawMessage) (any, error) {
		id, err := decodeID(p)
		if err != nil {
			return nil, err
		}
		path, err := d.attachments.Path(id)
		if err != nil {
			return nil, err
		}
		return openResult{Path: path}, nil
	})
	d.handleAs("propertyAttachments:saveFile", "PROPERTY_ATTACHMENTS_SAVE", codePropertyNotFound, func(p json.RawMessage) (any, error) {
		req, err := decode[saveFileRequest](d, p)
		if err != nil {
			return nil, err
		}
		data, err := base64.StdEncoding.DecodeString(req.FileData)
		if err != nil {
			return nil, fmt.Errorf("%w: fileData is not base64: %v", types.ErrValidation, err)
		}
		return d.attachments.Save(req.PropertyID, req.OriginalFilename, bytes.NewReader(data))
	})
}

type daysRequest struct {
	Days int `json:"days" validate:"gte=0"`
}

func (d *Dispatcher) days(p json.RawMessage) (int, error) {
	req, err := decode[daysRequest](d, p)
	if err != nil {
		return 0, err
	}
	if req.Days == 0 {
		return d.staleDays, nil
	}
	return req.Days, nil
}

func (d *Dispatcher) registerStats() {
	d.handle("stats:getDashboard", "", func(p json.RawMessage) (any, error) {
		days, err := d.days(p)
		if err != nil {
			return nil, err
		}
		return d.stats.Dashboard(days)
	})
	d.handle("stats:getStaleDeals", "", func(p json.RawMessage) (any, error) {
		days, err := d.days(p)
		if err != nil {
			return nil, err
		}
		return d.stats.StaleDeals(days)
	})
	d.handle("stats:getStaleDealDetails", "", func(p json.RawMessage) (any, error) {
		days, err := d.days(p)
		if err != nil {
			return nil, err
		}
		return d.stats.StaleDealDetails(days)
	})
	d.handle("stats:getIncaricoExpirations", "", func(json.RawMessage) (any, error) {
		return d.stats.IncaricoExpirations()
	})
}
