package budget

// FloorType is a normative floor category with its area-equivalence
// coefficient range. When MinCoefficient == MaxCoefficient the coefficient
// is fixed.
type FloorType struct {
	Name           string  `json:"name"`
	MinCoefficient float64 `json:"min_coefficient"`
	MaxCoefficient float64 `json:"max_coefficient"`
}

// Fixed reports whether the coefficient is not user-editable.
func (t FloorType) Fixed() bool {
	return t.MinCoefficient == t.MaxCoefficient
}

// Band is a bounded percentage item with its suggested default.
type Band struct {
	Name    string  `json:"name"`
	Min     float64 `json:"min"`
	Default float64 `json:"default"`
	Max     float64 `json:"max"`
}

// SiteAdminItem is a monthly construction-site administration cost.
type SiteAdminItem struct {
	Name    string  `json:"name"`
	Monthly float64 `json:"monthly"`
}

// DefaultFloorType is the category assigned to new floors.
const DefaultFloorType = "Área Privativa (Autônoma)"

// FloorTypes lists the floor categories in display order.
var FloorTypes = []FloorType{
	{Name: "Área Privativa (Autônoma)", MinCoefficient: 1.00, MaxCoefficient: 1.00},
	{Name: "Áreas de lazer ambientadas", MinCoefficient: 2.00, MaxCoefficient: 4.00},
	{Name: "Varandas", MinCoefficient: 0.75, MaxCoefficient: 1.00},
	{Name: "Terraços / Áreas Descobertas", MinCoefficient: 0.30, MaxCoefficient: 0.60},
	{Name: "Garagem (Subsolo)", MinCoefficient: 0.50, MaxCoefficient: 0.75},
	{Name: "Estacionamento (terreno)", MinCoefficient: 0.05, MaxCoefficient: 0.10},
	{Name: "Salas com Acabamento", MinCoefficient: 1.00, MaxCoefficient: 1.00},
	{Name: "Salas sem Acabamento", MinCoefficient: 0.75, MaxCoefficient: 0.90},
	{Name: "Loja sem Acabamento", MinCoefficient: 0.40, MaxCoefficient: 0.60},
	{Name: "Serviço (unifam. baixa, aberta)", MinCoefficient: 0.50, MaxCoefficient: 0.50},
	{Name: "Barrilete / Cx D'água / Casa Máquinas", MinCoefficient: 0.50, MaxCoefficient: 0.75},
	{Name: "Piscinas", MinCoefficient: 0.50, MaxCoefficient: 0.75},
	{Name: "Quintais / Calçadas / Jardins", MinCoefficient: 0.10, MaxCoefficient: 0.30},
	{Name: "Projeção Terreno sem Benfeitoria", MinCoefficient: 0.00, MaxCoefficient: 0.00},
}

// ConstructionStages share the direct cost; defaults sum to 100.
var ConstructionStages = []Band{
	{Name: "Serviços Preliminares e Fundações", Min: 7.0, Default: 8.0, Max: 9.0},
	{Name: "Estrutura (Supraestrutura)", Min: 14.0, Default: 16.0, Max: 22.0},
	{Name: "Vedações (Alvenaria)", Min: 8.0, Default: 10.0, Max: 15.0},
	{Name: "Cobertura e Impermeabilização", Min: 4.0, Default: 5.0, Max: 8.0},
	{Name: "Revestimentos de Fachada", Min: 5.0, Default: 6.0, Max: 10.0},
	{Name: "Instalações (Elétrica e Hidráulica)", Min: 12.0, Default: 15.0, Max: 18.0},
	{Name: "Esquadrias (Portas e Janelas)", Min: 6.0, Default: 8.0, Max: 12.0},
	{Name: "Revestimentos de Piso", Min: 8.0, Default: 10.0, Max: 15.0},
	{Name: "Revestimentos de Parede", Min: 6.0, Default: 8.0, Max: 12.0},
	{Name: "Revestimentos de Forro", Min: 3.0, Default: 4.0, Max: 6.0},
	{Name: "Pintura", Min: 4.0, Default: 5.0, Max: 8.0},
	{Name: "Serviços Complementares e Externos", Min: 3.0, Default: 5.0, Max: 10.0},
}

// IndirectCostItems are independent fractions of VGV.
var IndirectCostItems = []Band{
	{Name: "IRPJ/ CS/ PIS/ COFINS", Min: 3.0, Default: 4.0, Max: 6.0},
	{Name: "Corretagem", Min: 3.0, Default: 3.61, Max: 5.0},
	{Name: "Publicidade", Min: 0.5, Default: 0.9, Max: 2.0},
	{Name: "Manutenção", Min: 0.3, Default: 0.5, Max: 1.0},
	{Name: "Custo Fixo da Incorporadora", Min: 3.0, Default: 4.0, Max: 6.0},
	{Name: "Assessoria Técnica", Min: 0.5, Default: 0.7, Max: 1.5},
	{Name: "Projetos", Min: 0.4, Default: 0.52, Max: 1.5},
	{Name: "Licenças e Incorporação", Min: 0.1, Default: 0.2, Max: 0.5},
	{Name: "Outorga Onerosa", Min: 0.0, Default: 0.0, Max: 2.0},
	{Name: "Condomínio", Min: 0.0, Default: 0.0, Max: 0.5},
	{Name: "IPTU", Min: 0.05, Default: 0.07, Max: 0.2},
	{Name: "Preparação do Terreno", Min: 0.2, Default: 0.33, Max: 1.0},
	{Name: "Financiamento Bancário", Min: 1.0, Default: 1.9, Max: 3.0},
}

// SiteAdminItems are the default monthly site administration costs.
var SiteAdminItems = []SiteAdminItem{
	{Name: "Engenheiro Residente", Monthly: 15000},
	{Name: "Mestre de Obras", Monthly: 8000},
	{Name: "Almoxarife", Monthly: 3500},
	{Name: "Vigilância", Monthly: 6000},
	{Name: "Canteiro e Consumos", Monthly: 4500},
}

// LookupFloorType returns the floor category with the given name.
func LookupFloorType(name string) (FloorType, bool) {
	for _, t := range FloorTypes {
		if t.Name == name {
			return t, true
		}
	}
	return FloorType{}, false
}

// LookupBand finds a band by name.
func LookupBand(bands []Band, name string) (Band, bool) {
	for _, b := range bands {
		if b.Name == name {
			return b, true
		}
	}
	return Band{}, false
}

// BandNames returns the band names in display order.
func BandNames(bands []Band) []string {
	names := make([]string, 0, len(bands))
	for _, b := range bands {
		names = append(names, b.Name)
	}
	return names
}
