package models

// VCDBRecord is one vehicle configuration row owned by a tenant. Uniqueness is
// (tenant, year, make, model, submodel, drive_type); the same configuration in
// two tenants is two rows.
type VCDBRecord struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	TenantID      uint   `gorm:"index:idx_vcdb_identity,unique;not null" json:"tenant_id"`
	Tenant        Tenant `gorm:"foreignKey:TenantID" json:"-"`
	Year          int    `gorm:"index:idx_vcdb_identity,unique;not null" json:"year"`
	Make          string `gorm:"index:idx_vcdb_identity,unique;type:varchar(100);not null" json:"make"`
	Model         string `gorm:"index:idx_vcdb_identity,unique;type:varchar(100);not null" json:"model"`
	Submodel      string `gorm:"index:idx_vcdb_identity,unique;type:varchar(100)" json:"submodel"`
	DriveType     string `gorm:"index:idx_vcdb_identity,unique;type:varchar(50)" json:"drive_type"`
	FuelType      string `gorm:"type:varchar(50)" json:"fuel_type"`
	NumDoors      int    `gorm:"type:int" json:"num_doors"`
	BodyType      string `gorm:"type:varchar(50)" json:"body_type"`
	EngineType    string `gorm:"type:varchar(100)" json:"engine_type"`
	Transmission  string `gorm:"type:varchar(100)" json:"transmission"`
	TrimLevel     string `gorm:"type:varchar(100)" json:"trim_level"`
	DynamicFields JSON   `gorm:"type:json" json:"dynamic_fields"`
	SourceFile    string `gorm:"type:varchar(255)" json:"source_file"`
	Auditable
}

// VehicleKey is the natural key used for upserts and fitment dedupe.
func (v *VCDBRecord) VehicleKey() [5]string {
	return [5]string{itoa(v.Year), v.Make, v.Model, v.Submodel, v.DriveType}
}
