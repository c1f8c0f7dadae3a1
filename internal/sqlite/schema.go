package sqlite

// Inline schema applied when the base migration script is unavailable. It is
// the full current shape (every migration folded in) and is idempotent.
const (
	createSellers = `CREATE TABLE IF NOT EXISTS sellers (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    company TEXT,
    email TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    role TEXT,
    contact_preference TEXT NOT NULL DEFAULT 'telefono'
        CHECK (contact_preference IN ('telefono', 'email')),
    preferred_hours TEXT,
    notes TEXT NOT NULL DEFAULT '',
    last_contact TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createProperties = `CREATE TABLE IF NOT EXISTS properties (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    codice TEXT NOT NULL DEFAULT '',
    address_street TEXT NOT NULL DEFAULT '',
    address_number TEXT,
    address_city TEXT NOT NULL DEFAULT '',
    address_cap TEXT NOT NULL DEFAULT '',
    address_province TEXT NOT NULL DEFAULT '',
    address_country TEXT NOT NULL DEFAULT 'Italia',
    regione TEXT NOT NULL DEFAULT '',
    type TEXT NOT NULL DEFAULT 'altro'
        CHECK (type IN ('hotel', 'b&b', 'affittacamere', 'residence', 'altro')),
    category TEXT NOT NULL DEFAULT 'n/a'
        CHECK (category IN ('1*', '2*', '3*', '4*', '5*', 'n/a')),
    rooms INTEGER NOT NULL DEFAULT 0 CHECK (rooms >= 0),
    beds INTEGER NOT NULL DEFAULT 0 CHECK (beds >= 0),
    condition TEXT NOT NULL DEFAULT 'buono'
        CHECK (condition IN ('ottimo', 'buono', 'da_ristrutturare', 'in_costruzione')),
    price_min INTEGER NOT NULL DEFAULT 0 CHECK (price_min >= 0),
    price_max INTEGER NOT NULL DEFAULT 0 CHECK (price_max >= 0),
    notes TEXT NOT NULL DEFAULT '',
    seller_id TEXT REFERENCES sellers(id) ON DELETE SET NULL,
    has_incarico INTEGER NOT NULL DEFAULT 0,
    incarico_percentuale REAL,
    incarico_scadenza TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createBuyers = `CREATE TABLE IF NOT EXISTS buyers (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    company TEXT,
    email TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    budget_min INTEGER NOT NULL DEFAULT 0 CHECK (budget_min >= 0),
    budget_max INTEGER NOT NULL DEFAULT 0 CHECK (budget_max >= 0),
    currency TEXT NOT NULL DEFAULT 'EUR',
    level TEXT CHECK (level IN ('privato', 'fondo', 'gruppo_alberghiero', 'investitore')),
    notes TEXT NOT NULL DEFAULT '',
    last_contact TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createDeals = `CREATE TABLE IF NOT EXISTS deals (
    id TEXT PRIMARY KEY,
    buyer_id TEXT NOT NULL REFERENCES buyers(id) ON DELETE CASCADE,
    property_id TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
    status TEXT NOT NULL DEFAULT 'nuovo_contatto'
        CHECK (status IN ('nuovo_contatto', 'in_corso', 'offerta_inviata', 'diligenza', 'chiuso_positivo', 'chiuso_negativo')),
    oggetto TEXT NOT NULL DEFAULT ''
        CHECK (oggetto IN ('', 'vendita', 'affitto', 'gestione')),
    price_offered INTEGER CHECK (price_offered >= 0),
    price_negotiated INTEGER CHECK (price_negotiated >= 0),
    prezzo_richiesto INTEGER CHECK (prezzo_richiesto >= 0),
    provvigione_compratore REAL,
    collaboratore_compratore TEXT NOT NULL DEFAULT '',
    provvigione_venditore REAL,
    collaboratore_venditore TEXT NOT NULL DEFAULT '',
    pagamento_compratore TEXT NOT NULL DEFAULT ''
        CHECK (pagamento_compratore IN ('', 'si', 'no', 'rateale')),
    acconto_compratore INTEGER NOT NULL DEFAULT 0,
    pagamento_venditore TEXT NOT NULL DEFAULT ''
        CHECK (pagamento_venditore IN ('', 'si', 'no', 'rateale')),
    acconto_venditore INTEGER NOT NULL DEFAULT 0,
    notes TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createActivities = `CREATE TABLE IF NOT EXISTS activities (
    id TEXT PRIMARY KEY,
    deal_id TEXT NOT NULL REFERENCES deals(id) ON DELETE CASCADE,
    date TEXT NOT NULL,
    type TEXT NOT NULL
        CHECK (type IN ('nota', 'chiamata', 'email', 'appuntamento', 'follow_up')),
    description TEXT NOT NULL CHECK (length(trim(description)) > 0),
    created_at TEXT NOT NULL
);`

	createTags = `CREATE TABLE IF NOT EXISTS tags (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    color TEXT,
    created_at TEXT NOT NULL
);`

	createBuyerTags = `CREATE TABLE IF NOT EXISTS buyer_tags (
    buyer_id TEXT NOT NULL REFERENCES buyers(id) ON DELETE CASCADE,
    tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (buyer_id, tag_id)
);`

	createPropertyTags = `CREATE TABLE IF NOT EXISTS property_tags (
    property_id TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
    tag_id TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (property_id, tag_id)
);`

	createBuyerZones = `CREATE TABLE IF NOT EXISTS buyer_zones (
    buyer_id TEXT NOT NULL REFERENCES buyers(id) ON DELETE CASCADE,
    zone TEXT NOT NULL,
    PRIMARY KEY (buyer_id, zone)
);`

	createBuyerPreferredTypes = `CREATE TABLE IF NOT EXISTS buyer_preferred_types (
    buyer_id TEXT NOT NULL REFERENCES buyers(id) ON DELETE CASCADE,
    property_type TEXT NOT NULL
        CHECK (property_type IN ('hotel', 'b&b', 'affittacamere', 'residence', 'altro')),
    PRIMARY KEY (buyer_id, property_type)
);`

	createPropertyOperationTypes = `CREATE TABLE IF NOT EXISTS property_operation_types (
    property_id TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
    operation_type TEXT NOT NULL
        CHECK (operation_type IN ('affitto_attivita', 'vendita_attivita', 'affitto_mura', 'vendita_mura', 'vendita_cespite', 'vendita_societa')),
    PRIMARY KEY (property_id, operation_type)
);`

	createPropertyAttachments = `CREATE TABLE IF NOT EXISTS property_attachments (
    id TEXT PRIMARY KEY,
    property_id TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
    filename TEXT NOT NULL,
    original_filename TEXT NOT NULL,
    file_path TEXT NOT NULL,
    file_type TEXT NOT NULL DEFAULT '',
    file_size INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);`
)

// Index DDL for the common lookups and filters.
const (
	idxSellersName                 = `CREATE INDEX IF NOT EXISTS idx_sellers_name ON sellers(name);`
	idxPropertiesSeller            = `CREATE INDEX IF NOT EXISTS idx_properties_seller ON properties(seller_id);`
	idxPropertiesSellerNullable    = `CREATE INDEX IF NOT EXISTS idx_properties_seller_nullable ON properties(seller_id);`
	idxPropertiesCity              = `CREATE INDEX IF NOT EXISTS idx_properties_city ON properties(address_city);`
	idxPropertiesCodice            = `CREATE INDEX IF NOT EXISTS idx_properties_codice ON properties(codice);`
	idxBuyersName                  = `CREATE INDEX IF NOT EXISTS idx_buyers_name ON buyers(name);`
	idxBuyersBudget                = `CREATE INDEX IF NOT EXISTS idx_buyers_budget ON buyers(budget_min, budget_max);`
	idxDealsBuyer                  = `CREATE INDEX IF NOT EXISTS idx_deals_buyer ON deals(buyer_id);`
	idxDealsProperty               = `CREATE INDEX IF NOT EXISTS idx_deals_property ON deals(property_id);`
	idxDealsStatus                 = `CREATE INDEX IF NOT EXISTS idx_deals_status ON deals(status);`
	idxDealsOggetto                = `CREATE INDEX IF NOT EXISTS idx_deals_oggetto ON deals(oggetto);`
	idxDealsPrezzoRichiesto        = `CREATE INDEX IF NOT EXISTS idx_deals_prezzo_richiesto ON deals(prezzo_richiesto);`
	idxActivitiesDeal              = `CREATE INDEX IF NOT EXISTS idx_activities_deal ON activities(deal_id);`
	idxActivitiesDate              = `CREATE INDEX IF NOT EXISTS idx_activities_date ON activities(date);`
	idxPropertyOperationTypesProp  = `CREATE INDEX IF NOT EXISTS idx_property_operation_types_property ON property_operation_types(property_id);`
	idxPropertyOperationTypesType  = `CREATE INDEX IF NOT EXISTS idx_property_operation_types_type ON property_operation_types(operation_type);`
	idxPropertyAttachmentsProperty = `CREATE INDEX IF NOT EXISTS idx_property_attachments_property ON property_attachments(property_id);`
	idxPropertyAttachmentsType     = `CREATE INDEX IF NOT EXISTS idx_property_attachments_type ON property_attachments(file_type);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createSellers,
	createProperties,
	createBuyers,
	createDeals,
	createActivities,
	createTags,
	createBuyerTags,
	createPropertyTags,
	createBuyerZones,
	createBuyerPreferredTypes,
	createPropertyOperationTypes,
	createPropertyAttachments,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxSellersName,
	idxPropertiesSeller,
	idxPropertiesSellerNullable,
	idxPropertiesCity,
	idxPropertiesCodice,
	idxBuyersName,
	idxBuyersBudget,
	idxDealsBuyer,
	idxDealsProperty,
	idxDealsStatus,
	idxDealsOggetto,
	idxDealsPrezzoRichiesto,
	idxActivitiesDeal,
	idxActivitiesDate,
	idxPropertyOperationTypesProp,
	idxPropertyOperationTypesType,
	idxPropertyAttachmentsProperty,
	idxPropertyAttachmentsType,
}

// crmTables lists every table in foreign-key dependency order. Parents come
// before children.
var crmTables = []string{
	"sellers",
	"properties",
	"buyers",
	"deals",
	"activities",
	"tags",
	"buyer_tags",
	"property_tags",
	"buyer_zones",
	"buyer_preferred_types",
	"property_operation_types",
	"property_attachments",
}
