// Copyright (C) 2025 Procurisk Labs (engineering@procurisk.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// Supplier is the core directory record for a tracked business entity.
// The engine only reads it; ownership stays with the supplier directory.
type Supplier struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	AnnualRevenue float64 `json:"annual_revenue"`
	EmployeeCount int     `json:"employee_count"`
	FoundedYear   int     `json:"founded_year"`
	HQLocation    string  `json:"hq_location"`
	Industry      string  `json:"industry"`
}

// SupplierProperties is the Weaviate-facing shape of a Supplier object.
type SupplierProperties struct {
	SupplierID    string  `json:"supplier_id"`
	Name          string  `json:"name"`
	AnnualRevenue float64 `json:"annual_revenue"`
	EmployeeCount int     `json:"employee_count"`
	FoundedYear   int     `json:"founded_year"`
	HQLocation    string  `json:"hq_location"`
	Industry      string  `json:"industry"`
}

// ToMap converts SupplierProperties to the map format required by
// Weaviate's WithProperties().
func (p *SupplierProperties) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"supplier_id":    p.SupplierID,
		"name":           p.Name,
		"annual_revenue": p.AnnualRevenue,
		"employee_count": p.EmployeeCount,
		"founded_year":   p.FoundedYear,
		"hq_location":    p.HQLocation,
		"industry":       p.Industry,
	}
}
