package stacktraces

import (
	"github.com/pkg/errors"
)

// ContractFunction describes a constructor, function, fallback, getter or modifier declared in a Contract.
// All fields are immutable except the selector, which only Contract.CorrectSelector may change, and only during the
// build phase.
type ContractFunction struct {
	name         string
	functionType ContractFunctionType
	location     *SourceLocation

	// contract is a non-owning reference to the contract which declares the function.
	contract *Contract

	visibility    ContractFunctionVisibility
	hasVisibility bool

	isPayable    bool
	hasIsPayable bool

	// selector is nil for functions which are not externally callable.
	selector *Selector
}

// ContractFunctionOption sets an optional attribute of a ContractFunction during construction.
type ContractFunctionOption func(f *ContractFunction)

// WithVisibility sets the visibility of the function.
func WithVisibility(visibility ContractFunctionVisibility) ContractFunctionOption {
	return func(f *ContractFunction) {
		f.visibility = visibility
		f.hasVisibility = true
	}
}

// WithPayable sets whether the function accepts value transfers.
func WithPayable(isPayable bool) ContractFunctionOption {
	return func(f *ContractFunction) {
		f.isPayable = isPayable
		f.hasIsPayable = true
	}
}

// WithSelector sets the selector the function is believed to be dispatched by.
func WithSelector(selector Selector) ContractFunctionOption {
	return func(f *ContractFunction) {
		s := selector
		f.selector = &s
	}
}

// NewContractFunction creates a ContractFunction declared by the provided contract. The contract's location must
// contain the function's location.
func NewContractFunction(
	name string,
	functionType ContractFunctionType,
	location *SourceLocation,
	contract *Contract,
	opts ...ContractFunctionOption,
) (*ContractFunction, error) {
	if contract == nil || location == nil {
		return nil, errors.Errorf("function %v requires a contract and a location", name)
	}
	if contract.Location() == nil {
		return nil, errors.Wrapf(ErrInvalidLocation, "contract %v of function %v has no location", contract.Name(), name)
	}
	if !contract.Location().Contains(location) {
		return nil, errors.Wrapf(ErrFunctionOutsideContract, "function %v in contract %v", name, contract.Name())
	}

	function := &ContractFunction{
		name:         name,
		functionType: functionType,
		location:     location,
		contract:     contract,
	}
	for _, opt := range opts {
		opt(function)
	}
	return function, nil
}

// Name returns the declared name of the function. Constructors and fallbacks may have an empty name.
func (f *ContractFunction) Name() string {
	return f.name
}

// Type returns the kind of function.
func (f *ContractFunction) Type() ContractFunctionType {
	return f.functionType
}

// Location returns the source range of the function's declaration.
func (f *ContractFunction) Location() *SourceLocation {
	return f.location
}

// Contract returns the contract which declares the function.
func (f *ContractFunction) Contract() *Contract {
	return f.contract
}

// Visibility returns the function's visibility, and whether it was known.
func (f *ContractFunction) Visibility() (ContractFunctionVisibility, bool) {
	return f.visibility, f.hasVisibility
}

// IsPayable returns whether the function accepts value transfers, and whether it was known.
func (f *ContractFunction) IsPayable() (bool, bool) {
	return f.isPayable, f.hasIsPayable
}

// Selector returns the function's selector, and whether it has one.
func (f *ContractFunction) Selector() (Selector, bool) {
	if f.selector == nil {
		return Selector{}, false
	}
	return *f.selector, true
}

// IsExternallyCallable returns true for public or external functions and getters, which are the only entries
// dispatched through a contract's selector table.
func (f *ContractFunction) IsExternallyCallable() bool {
	if !f.hasVisibility || !f.visibility.IsExternallyVisible() {
		return false
	}
	return f.functionType == ContractFunctionTypeFunction || f.functionType == ContractFunctionTypeGetter
}

// String returns the function formatted as "Contract.name".
func (f *ContractFunction) String() string {
	name := f.name
	if name == "" {
		name = f.functionType.String()
	}
	return f.contract.Name() + "." + name
}
