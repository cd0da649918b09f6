package fieldconfig

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mft-data/fitmenthub/app/models"
)

func TestRuleFromConfig(t *testing.T) {
	min, max := 1900.0, 2100.0
	cfg := &models.FieldConfiguration{
		TenantID:         1,
		Name:             "year",
		ReferenceType:    models.ReferenceVCDB,
		FieldType:        models.FieldTypeInteger,
		RequirementLevel: models.RequirementRequired,
		IsUnique:         true,
		MinValue:         &min,
		MaxValue:         &max,
		DefaultValue:     "2020",
	}

	rule := ruleFromConfig(cfg)
	assert.Equal(t, "year", rule.Name)
	assert.Equal(t, models.FieldTypeInteger, rule.Type)
	assert.True(t, rule.Required)
	assert.False(t, rule.Disabled)
	assert.True(t, rule.Unique)
	require.NotNil(t, rule.MinValue)
	assert.Equal(t, 1900.0, *rule.MinValue)
	assert.Equal(t, "2020", rule.Default)
}

func TestRuleFromConfigDisabled(t *testing.T) {
	cfg := &models.FieldConfiguration{
		Name:             "trim_level",
		FieldType:        models.FieldTypeString,
		RequirementLevel: models.RequirementDisabled,
	}
	rule := ruleFromConfig(cfg)
	assert.True(t, rule.Disabled)
	assert.False(t, rule.Required)
}

func TestRuleFromConfigEnum(t *testing.T) {
	cfg := &models.FieldConfiguration{
		Name:             "fuel_type",
		FieldType:        models.FieldTypeEnum,
		RequirementLevel: models.RequirementOptional,
		EnumOptions:      models.JSON(`["Gas","Diesel"]`),
	}
	rule := ruleFromConfig(cfg)
	assert.Equal(t, []string{"Gas", "Diesel"}, rule.Enum)
	assert.False(t, rule.EnumFold)

	cfg.EnumFold = true
	assert.True(t, ruleFromConfig(cfg).EnumFold)
}

func TestSchemaRequiredFields(t *testing.T) {
	schema := &Schema{
		TenantID:      1,
		ReferenceType: models.ReferenceVCDB,
		Fields: map[string]*FieldRule{
			"year":       {Name: "year", Required: true},
			"make":       {Name: "make", Required: true},
			"model":      {Name: "model"},
			"trim_level": {Name: "trim_level", Required: true, Disabled: true},
		},
	}

	got := schema.RequiredFields()
	sort.Strings(got)
	assert.Equal(t, []string{"make", "year"}, got, "disabled fields are never required")
}

func TestSchemaRule(t *testing.T) {
	schema := &Schema{Fields: map[string]*FieldRule{"year": {Name: "year"}}}
	assert.NotNil(t, schema.Rule("year"))
	assert.Nil(t, schema.Rule("unknown"))
}

func TestSchemaKey(t *testing.T) {
	assert.Equal(t, "fieldconfig:schema:7:vcdb", schemaKey(7, models.ReferenceVCDB))
}
