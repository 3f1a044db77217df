package stacktraces

import (
	"bytes"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// Contract describes a contract or library, the functions it declares directly, and a selector table which resolves
// externally callable functions across its inheritance chain.
// A Contract is mutated only during the build phase: by AddLocalFunction, once per base contract by
// AddNextLinearizedBaseContract, and by CorrectSelector. It is read-only afterwards.
type Contract struct {
	name         string
	contractType ContractType
	location     *SourceLocation

	// localFunctions describes the functions declared directly in this contract, excluding inherited ones.
	localFunctions []*ContractFunction

	constructorFunction *ContractFunction
	fallback            *ContractFunction

	// selectorToFunction resolves selectors to public or external functions and getters, either local or
	// inherited. Local entries always win over inherited ones, and earlier merged bases win over later ones.
	selectorToFunction map[Selector]*ContractFunction
}

// NewContract creates a Contract with no functions. A contract without a location cannot be added to a SourceFile
// or declare functions.
func NewContract(name string, contractType ContractType, location *SourceLocation) *Contract {
	return &Contract{
		name:               name,
		contractType:       contractType,
		location:           location,
		selectorToFunction: make(map[Selector]*ContractFunction),
	}
}

// Name returns the name of the contract.
func (c *Contract) Name() string {
	return c.name
}

// Type returns whether this is a contract or a library.
func (c *Contract) Type() ContractType {
	return c.contractType
}

// Location returns the source range of the contract's declaration.
func (c *Contract) Location() *SourceLocation {
	return c.location
}

// LocalFunctions returns the functions declared directly in this contract, in the order they were added.
func (c *Contract) LocalFunctions() []*ContractFunction {
	return slices.Clone(c.localFunctions)
}

// ConstructorFunction returns the contract's public constructor, or nil if it has none.
func (c *Contract) ConstructorFunction() *ContractFunction {
	return c.constructorFunction
}

// Fallback returns the contract's fallback function, which may be inherited, or nil if it has none.
func (c *Contract) Fallback() *ContractFunction {
	return c.fallback
}

// AddLocalFunction adds a function declared directly in this contract. Public and external functions and getters
// are registered in the selector table, and public or external constructors and fallbacks are recorded.
func (c *Contract) AddLocalFunction(function *ContractFunction) error {
	if function.Contract() != c {
		return errors.Wrapf(ErrFunctionNotLocal, "function %v cannot be added to contract %v", function.Name(), c.name)
	}

	if visibility, ok := function.Visibility(); ok && visibility.IsExternallyVisible() {
		switch function.Type() {
		case ContractFunctionTypeFunction, ContractFunctionTypeGetter:
			selector, ok := function.Selector()
			if !ok {
				return errors.Wrapf(ErrMissingSelector, "function %v", function)
			}
			c.selectorToFunction[selector] = function
		case ContractFunctionTypeConstructor:
			c.constructorFunction = function
		case ContractFunctionTypeFallback:
			c.fallback = function
		case ContractFunctionTypeModifier:
		}
	}

	c.localFunctions = append(c.localFunctions, function)
	return nil
}

// AddNextLinearizedBaseContract merges the externally callable functions of a base contract into this contract's
// selector table. It must be called once per base contract, closest ancestor first, after all local functions were
// added. Existing entries are never overwritten.
func (c *Contract) AddNextLinearizedBaseContract(base *Contract) {
	if c.fallback == nil && base.fallback != nil {
		c.fallback = base.fallback
	}

	for _, function := range base.localFunctions {
		if !function.IsExternallyCallable() {
			continue
		}

		// AddLocalFunction guarantees externally callable functions have a selector.
		selector, _ := function.Selector()
		if _, exists := c.selectorToFunction[selector]; !exists {
			c.selectorToFunction[selector] = function
		}
	}
}

// GetFunctionFromSelector returns the externally callable function, local or inherited, dispatched by the provided
// selector. Returns nil if this contract has no such function.
func (c *Contract) GetFunctionFromSelector(selector Selector) *ContractFunction {
	return c.selectorToFunction[selector]
}

// ExternalFunctions returns every function in the selector table, sorted by selector.
func (c *Contract) ExternalFunctions() []*ContractFunction {
	selectors := make([]Selector, 0, len(c.selectorToFunction))
	for selector := range c.selectorToFunction {
		selectors = append(selectors, selector)
	}
	sort.Slice(selectors, func(i, j int) bool {
		return bytes.Compare(selectors[i][:], selectors[j][:]) < 0
	})

	functions := make([]*ContractFunction, len(selectors))
	for i, selector := range selectors {
		functions[i] = c.selectorToFunction[selector]
	}
	return functions
}

// CorrectSelector replaces the selector of the only function in the selector table named functionName.
//
// Selectors are computed from AST signatures so that functions can be mapped back to their declarations, and that
// computation can be wrong in the presence of inherited enums, structs or ABI v2 types. When the compiler reports a
// selector for functionName which is missing from the table, a single function with that name must be the one with
// the wrong selector. With zero or multiple candidates nothing is changed and false is returned.
func (c *Contract) CorrectSelector(functionName string, selector Selector) bool {
	var candidate *ContractFunction
	for _, function := range c.selectorToFunction {
		if function.Name() != functionName {
			continue
		}
		if candidate != nil {
			return false
		}
		candidate = function
	}
	if candidate == nil {
		return false
	}

	if oldSelector, ok := candidate.Selector(); ok {
		delete(c.selectorToFunction, oldSelector)
	}
	candidate.selector = &selector
	c.selectorToFunction[selector] = candidate
	return true
}
