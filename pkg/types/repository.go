package types

// Every repository shares the same base contract: GetByID returns (nil, nil)
// when the row is absent, while Update and Delete return an error wrapping
// ErrNotFound. Multi-table writes are atomic.

// SellerRepository stores sellers.
type SellerRepository interface {
	Count() (int, error)
	Exists(id string) (bool, error)
	GetAll(filter SellerFilter) ([]Seller, error)
	GetByID(id string) (*Seller, error)
	Create(req CreateSellerRequest) (*Seller, error)
	Update(req UpdateSellerRequest) (*Seller, error)
	Delete(id string) error
	UpdateLastContact(id string) error
}

// PropertyRepository stores properties with their tags and operation types.
type PropertyRepository interface {
	Count() (int, error)
	Exists(id string) (bool, error)
	GetAll(filter PropertyFilter) ([]Property, error)
	GetByID(id string) (*Property, error)
	Create(req CreatePropertyRequest) (*Property, error)
	Update(req UpdatePropertyRequest) (*Property, error)
	Delete(id string) error
	GetBySeller(sellerID string) ([]Property, error)
	GetCities() ([]string, error)
	GetWithIncarico() ([]Property, error)
}

// BuyerRepository stores buyers with their zones, preferred types, and tags.
type BuyerRepository interface {
	Count() (int, error)
	Exists(id string) (bool, error)
	GetAll(filter BuyerFilter) ([]Buyer, error)
	GetByID(id string) (*Buyer, error)
	Create(req CreateBuyerRequest) (*Buyer, error)
	Update(req UpdateBuyerRequest) (*Buyer, error)
	Delete(id string) error
	UpdateLastContact(id string) error
}

// DealRepository stores deals. Returned deals carry their activities.
type DealRepository interface {
	Count() (int, error)
	Exists(id string) (bool, error)
	GetAll(filter DealFilter) ([]Deal, error)
	GetByID(id string) (*Deal, error)
	Create(req CreateDealRequest) (*Deal, error)
	Update(req UpdateDealRequest) (*Deal, error)
	Delete(id string) error
	GetByBuyer(buyerID string) ([]Deal, error)
	GetByProperty(propertyID string) ([]Deal, error)
	GetByStatus(status DealStatus) ([]Deal, error)
	GetStaleDeals(days int) ([]Deal, error)
	UpdateStatus(id string, status DealStatus) (*Deal, error)
	CountActive() (int, error)
	CountClosed() (int, error)
}

// ActivityRepository stores activities. Creating an activity touches the
// parent deal's updated_at.
type ActivityRepository interface {
	Count() (int, error)
	Exists(id string) (bool, error)
	GetAll() ([]Activity, error)
	GetByID(id string) (*Activity, error)
	Create(req CreateActivityRequest) (*Activity, error)
	Update(req UpdateActivityRequest) (*Activity, error)
	Delete(id string) error
	GetByDeal(dealID string) ([]Activity, error)
	GetRecent(days, limit int) ([]Activity, error)
}

// TagRepository stores tags. Create is idempotent by name.
type TagRepository interface {
	Count() (int, error)
	Exists(id string) (bool, error)
	GetAll() ([]Tag, error)
	GetByID(id string) (*Tag, error)
	GetByName(name string) (*Tag, error)
	Create(req CreateTagRequest) (*Tag, error)
	Update(req UpdateTagRequest) (*Tag, error)
	Delete(id string) error
	GetBuyerTags() ([]Tag, error)
	GetPropertyTags() ([]Tag, error)
}

// AttachmentRepository stores attachment records. Update returns the
// existing record unchanged.
type AttachmentRepository interface {
	Count() (int, error)
	Exists(id string) (bool, error)
	GetAll() ([]PropertyAttachment, error)
	GetByID(id string) (*PropertyAttachment, error)
	GetByPropertyID(propertyID string) ([]PropertyAttachment, error)
	Create(req CreateAttachmentRequest) (*PropertyAttachment, error)
	Update(id string) (*PropertyAttachment, error)
	Delete(id string) error
	DeleteByPropertyID(propertyID string) (int, error)
}

// Store groups the repositories of one open database.
type Store interface {
	Sellers() SellerRepository
	Properties() PropertyRepository
	Buyers() BuyerRepository
	Deals() DealRepository
	Activities() ActivityRepository
	Tags() TagRepository
	Attachments() AttachmentRepository
}
