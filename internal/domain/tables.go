package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&SysOpLog{},
	// Catalog
	&Category{},
	&Product{},
	// Parties
	&Customer{},
	&User{},
	// Sales
	&Order{},
	&OrderLine{},
}
