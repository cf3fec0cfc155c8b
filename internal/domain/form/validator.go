package form

import (
	"fmt"
	"maps"
	"math"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

// SchemaError is the first violation found in a schema. Path points at the
// offending element, e.g. "fields[2].options".
type SchemaError struct {
	Path    string
	Message string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

func schemaErr(path, format string, args ...any) *SchemaError {
	return &SchemaError{Path: path, Message: fmt.Sprintf(format, args...)}
}

const (
	FieldTypeText     = "text"
	FieldTypeEmail    = "email"
	FieldTypeNumber   = "number"
	FieldTypeTextarea = "textarea"
	FieldTypeSelect   = "select"
	FieldTypeCheckbox = "checkbox"
	FieldTypeRadio    = "radio"
	FieldTypeDate     = "date"
	FieldTypeFile     = "file"
	FieldTypeURL      = "url"
	FieldTypeTel      = "tel"
)

type ruleKind int

const (
	ruleBool ruleKind = iota
	ruleCount
	ruleNumber
	rulePattern
	ruleString
	ruleStringList
	rulePositive
)

var (
	textRules = map[string]ruleKind{
		"required":  ruleBool,
		"minLength": ruleCount,
		"maxLength": ruleCount,
		"pattern":   rulePattern,
	}

	// fieldRules is the allow-list of validation rules per field type.
	fieldRules = map[string]map[string]ruleKind{
		FieldTypeText:     textRules,
		FieldTypeTextarea: textRules,
		FieldTypeEmail:    {"required": ruleBool, "maxLength": ruleCount, "pattern": rulePattern},
		FieldTypeURL:      {"required": ruleBool, "maxLength": ruleCount, "pattern": rulePattern},
		FieldTypeTel:      {"required": ruleBool, "maxLength": ruleCount, "pattern": rulePattern},
		FieldTypeNumber:   {"required": ruleBool, "min": ruleNumber, "max": ruleNumber, "step": rulePositive},
		FieldTypeSelect:   {"required": ruleBool},
		FieldTypeRadio:    {"required": ruleBool},
		FieldTypeCheckbox: {"required": ruleBool},
		FieldTypeDate:     {"required": ruleBool, "min": ruleString, "max": ruleString},
		FieldTypeFile:     {"required": ruleBool, "maxSize": rulePositive, "allowedTypes": ruleStringList},
	}

	settingRules = map[string]ruleKind{
		"submitButton":      ruleString,
		"successMessage":    ruleString,
		"errorMessage":      ruleString,
		"redirectUrl":       ruleString,
		"emailNotification": ruleBool,
		"theme":             ruleString,
	}
)

// IsAllowedFieldType reports whether t is a supported field type.
func IsAllowedFieldType(t string) bool {
	_, ok := fieldRules[t]
	return ok
}

func requiresOptions(t string) bool {
	return t == FieldTypeSelect || t == FieldTypeRadio
}

// ValidateSchema checks a schema against the field grammar and stops at the
// first violation. An empty schema is valid.
func ValidateSchema(s Schema) error {
	if len(s) == 0 {
		return nil
	}

	if raw, present := s["fields"]; present {
		fields, ok := asSlice(raw)
		if !ok {
			return schemaErr("fields", "doit être un tableau")
		}
		if err := validateFields(fields); err != nil {
			return err
		}
	}

	if raw, present := s["settings"]; present {
		if err := validateSettings(raw); err != nil {
			return err
		}
	}
	return nil
}

func validateFields(fields []any) error {
	ids := make(map[string]struct{}, len(fields))
	positions := make(map[int64]struct{}, len(fields))

	for i, raw := range fields {
		path := fmt.Sprintf("fields[%d]", i)
		field, ok := raw.(map[string]any)
		if !ok {
			return schemaErr(path, "le champ doit être un objet")
		}

		fieldType, _ := field["type"].(string)
		if strings.TrimSpace(fieldType) == "" {
			return schemaErr(path+".type", "le type de champ est requis")
		}
		if !IsAllowedFieldType(fieldType) {
			return schemaErr(path+".type", "Type de champ non autorisé: %s", fieldType)
		}

		if label, _ := field["label"].(string); strings.TrimSpace(label) == "" {
			return schemaErr(path+".label", "le libellé du champ est requis")
		}

		if rawID, present := field["id"]; present {
			id, _ := rawID.(string)
			if strings.TrimSpace(id) == "" {
				return schemaErr(path+".id", "l'identifiant doit être une chaîne non vide")
			}
			if _, dup := ids[id]; dup {
				return schemaErr(path+".id", "Identifiant de champ dupliqué: %s", id)
			}
			ids[id] = struct{}{}
		}

		if rawPos, present := field["position"]; present {
			pos, ok := toPositiveInt(rawPos)
			if !ok {
				return schemaErr(path+".position", "la position doit être un entier positif")
			}
			if _, dup := positions[pos]; dup {
				return schemaErr(path+".position", "Position de champ dupliquée: %d", pos)
			}
			positions[pos] = struct{}{}
		}

		if requiresOptions(fieldType) {
			if err := validateOptions(path, field["options"]); err != nil {
				return err
			}
		}

		if rawRules, present := field["validation"]; present {
			if err := validateRules(path, fieldType, rawRules); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateOptions(path string, raw any) error {
	opts, ok := asSlice(raw)
	if !ok || len(opts) == 0 {
		return schemaErr(path+".options", "les options doivent être un tableau non vide")
	}
	for j, o := range opts {
		optPath := fmt.Sprintf("%s.options[%d]", path, j)
		opt, ok := o.(map[string]any)
		if !ok {
			return schemaErr(optPath, "l'option doit être un objet")
		}
		if strings.TrimSpace(scalarString(opt["value"])) == "" {
			return schemaErr(optPath+".value", "la valeur de l'option est requise")
		}
		label, isString := opt["label"].(string)
		if !isString || strings.TrimSpace(label) == "" {
			return schemaErr(optPath+".label", "le libellé de l'option doit être une chaîne non vide")
		}
	}
	return nil
}

func validateRules(path, fieldType string, raw any) error {
	rules, ok := raw.(map[string]any)
	if !ok {
		return schemaErr(path+".validation", "les règles de validation doivent être un objet")
	}
	allowed := fieldRules[fieldType]
	for _, name := range slices.Sorted(maps.Keys(rules)) {
		value := rules[name]
		rulePath := path + ".validation." + name
		kind, ok := allowed[name]
		if !ok {
			return schemaErr(rulePath, "règle de validation non autorisée pour le type %s: %s", fieldType, name)
		}
		if err := checkRuleValue(rulePath, name, kind, value); err != nil {
			return err
		}
	}
	if minV, ok := toNumber(rules["minLength"]); ok {
		if maxV, ok := toNumber(rules["maxLength"]); ok && minV > maxV {
			return schemaErr(path+".validation", "minLength ne peut pas dépasser maxLength")
		}
	}
	if fieldType == FieldTypeNumber {
		if minV, ok := toNumber(rules["min"]); ok {
			if maxV, ok := toNumber(rules["max"]); ok && minV > maxV {
				return schemaErr(path+".validation", "min ne peut pas dépasser max")
			}
		}
	}
	return nil
}

func checkRuleValue(path, name string, kind ruleKind, value any) error {
	invalid := func() error {
		return schemaErr(path, "valeur invalide pour la règle %s", name)
	}
	switch kind {
	case ruleBool:
		if _, ok := value.(bool); !ok {
			return invalid()
		}
	case ruleCount:
		f, ok := toNumber(value)
		if !ok || f < 0 || f != math.Trunc(f) {
			return invalid()
		}
	case ruleNumber:
		if _, ok := toNumber(value); !ok {
			return invalid()
		}
	case rulePositive:
		f, ok := toNumber(value)
		if !ok || f <= 0 {
			return invalid()
		}
	case ruleString:
		if _, ok := value.(string); !ok {
			return invalid()
		}
	case ruleStringList:
		items, ok := value.([]any)
		if !ok {
			if strs, isStrs := value.([]string); isStrs {
				for _, s := range strs {
					items = append(items, s)
				}
				ok = true
			}
		}
		if !ok {
			return invalid()
		}
		for _, it := range items {
			if s, isStr := it.(string); !isStr || s == "" {
				return invalid()
			}
		}
	case rulePattern:
		p, ok := value.(string)
		if !ok {
			return invalid()
		}
		if _, err := regexp.Compile(p); err != nil {
			return schemaErr(path, "expression régulière invalide: %s", p)
		}
	}
	return nil
}

func validateSettings(raw any) error {
	settings, ok := raw.(map[string]any)
	if !ok {
		return schemaErr("settings", "les paramètres doivent être un objet")
	}
	for _, key := range slices.Sorted(maps.Keys(settings)) {
		value := settings[key]
		path := "settings." + key
		kind, ok := settingRules[key]
		if !ok {
			return schemaErr(path, "Paramètre non autorisé: %s", key)
		}
		if err := checkRuleValue(path, key, kind, value); err != nil {
			return schemaErr(path, "type invalide pour le paramètre %s", key)
		}
		if key == "redirectUrl" {
			if u, err := url.Parse(value.(string)); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return schemaErr(path, "URL de redirection invalide")
			}
		}
	}
	return nil
}
