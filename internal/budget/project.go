package budget

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ciceromayk/parametrico/pkg/constants"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Defaults are the values applied to every new project.
type Defaults struct {
	CostConfig         CostConfig
	ConstructionMonths int
}

// StandardDefaults returns the built-in project defaults.
func StandardDefaults() Defaults {
	return Defaults{
		CostConfig: CostConfig{
			LandCostPerM2:         constants.DefaultLandCostPerM2,
			ConstructionCostPerM2: constants.DefaultConstructionCostPerM2,
			AvgSalePricePerM2:     constants.DefaultSalePricePerM2,
		},
		ConstructionMonths: constants.DefaultConstructionMonths,
	}
}

// ProjectInput is the "new project" / "general data" form.
type ProjectInput struct {
	Name        string      `json:"name" validate:"required"`
	LandArea    float64     `json:"land_area" validate:"gte=0"`
	PrivateArea float64     `json:"private_area" validate:"gte=0"`
	UnitCount   int         `json:"unit_count" validate:"gte=1"`
	Address     string      `json:"address"`
	CostConfig  *CostConfig `json:"cost_config,omitempty"`
}

// NewProject builds an unsaved project with the default floor and
// percentage tables. The returned project has ID 0.
func NewProject(input ProjectInput, defaults Defaults, now time.Time) (*Project, error) {
	input.Name = strings.TrimSpace(input.Name)
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	costs := defaults.CostConfig
	if input.CostConfig != nil {
		costs = *input.CostConfig
	}
	months := defaults.ConstructionMonths
	if months <= 0 {
		months = constants.DefaultConstructionMonths
	}

	return &Project{
		Name:                    input.Name,
		LandArea:                input.LandArea,
		PrivateArea:             input.PrivateArea,
		UnitCount:               input.UnitCount,
		Address:                 input.Address,
		CostConfig:              costs,
		Floors:                  []Floor{DefaultFloor()},
		StagePercentages:        NewPercentageSet(ConstructionStages),
		IndirectCostPercentages: NewPercentageSet(IndirectCostItems),
		FixedIndirectCosts:      map[string]float64{},
		SiteAdminCosts:          DefaultSiteAdminCosts(),
		ConstructionMonths:      months,
		CreatedAt:               now.UTC().Truncate(time.Second),
	}, nil
}

// ApplyInput overwrites the general data of the project.
func (p *Project) ApplyInput(input ProjectInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if err := ValidateInput(input); err != nil {
		return err
	}
	p.Name = input.Name
	p.LandArea = input.LandArea
	p.PrivateArea = input.PrivateArea
	p.UnitCount = input.UnitCount
	p.Address = input.Address
	if input.CostConfig != nil {
		p.CostConfig = *input.CostConfig
	}
	return nil
}

// ValidateInput checks the general project data.
func ValidateInput(input ProjectInput) error {
	if err := validate.Struct(input); err != nil {
		return wrapValidation("project", err)
	}
	if input.CostConfig != nil {
		if err := validate.Struct(*input.CostConfig); err != nil {
			return wrapValidation("cost_config", err)
		}
	}
	return nil
}

// ValidateFloor checks a floor's fields and that its coefficient lies
// within the bounds of its type.
func ValidateFloor(f Floor) error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("%w: floor name is required", ErrInvalid)
	}
	if err := validate.Struct(f); err != nil {
		return wrapValidation(fmt.Sprintf("floor %q", f.Name), err)
	}
	ft, ok := LookupFloorType(f.Type)
	if !ok {
		return fmt.Errorf("%w: floor %q has unknown type %q", ErrInvalid, f.Name, f.Type)
	}
	if f.Coefficient < ft.MinCoefficient-constants.CoefficientTolerance ||
		f.Coefficient > ft.MaxCoefficient+constants.CoefficientTolerance {
		return fmt.Errorf("%w: floor %q coefficient %.2f outside [%.2f, %.2f]",
			ErrInvalid, f.Name, f.Coefficient, ft.MinCoefficient, ft.MaxCoefficient)
	}
	return nil
}

// FixCoefficient snaps the coefficient of fixed-coefficient types to the
// type value. Other floors are returned unchanged.
func FixCoefficient(f Floor) Floor {
	if ft, ok := LookupFloorType(f.Type); ok && ft.Fixed() {
		f.Coefficient = ft.MinCoefficient
	}
	return f
}

func wrapValidation(subject string, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, subject, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s: %s", ErrInvalid, subject, strings.Join(msgs, "; "))
}
