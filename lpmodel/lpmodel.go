// Copyright 2010-2024 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lpmodel offers a user-friendly API to build linear programs.
//
// The `Builder` struct wraps the in-memory `Model` and provides helper methods
// for adding variables and constraints to the model. The `Var` struct is a
// reference to a specific variable in the model and provides helpful methods
// for interacting with that variable. The `LinearExpr` struct provides helper
// methods for creating constraints and the objective from expressions with
// many variables and coefficients; numeric constants and variables can be
// mixed freely in one expression.
//
// Variable bounds can be mutated on an already-built model through
// `SetBounds` and `Fix`, which lets a caller re-solve the same constraint set
// against many different fixed values without rebuilding anything.
package lpmodel

import (
	"errors"
	"fmt"
	"math"

	log "github.com/golang/glog"
)

// ErrMixedModels holds the error when elements added to a model are different.
var ErrMixedModels = errors.New("elements are not part of the same model")

type (
	// VarIndex is the index of a variable in the model.
	VarIndex int32
	// ConstrIndex is the index of a constraint in the model.
	ConstrIndex int32
)

// VarType selects whether a variable is continuous or restricted to integer
// values. The type is carried on the model for the benefit of MIP-capable
// Solver implementations; see the Solver documentation for how the bundled
// backend treats it.
type VarType int

const (
	// Continuous allows any value within the variable bounds.
	Continuous VarType = iota
	// Integer restricts the variable to integer values within its bounds.
	Integer
)

// Variable is the stored form of a decision variable.
type Variable struct {
	Bounds Interval
	Type   VarType
	Name   string
}

// LinearConstraint is the stored form of a linear constraint
// `Bounds.Lower <= sum(Coeffs[i]*x[VarIndices[i]]) <= Bounds.Upper`.
type LinearConstraint struct {
	VarIndices []VarIndex
	Coeffs     []float64
	Bounds     Interval
	Name       string
}

// Objective is the stored form of the linear objective.
type Objective struct {
	VarIndices []VarIndex
	Coeffs     []float64
	Offset     float64
	Maximize   bool
}

// Model is the plain data representation of a linear program. It is consumed
// by Solver implementations and never serialized by this package.
type Model struct {
	Variables   []Variable
	Constraints []LinearConstraint
	Objective   Objective
}

// LinearArgument provides an interface for Var and LinearExpr.
type LinearArgument interface {
	addToLinearExpr(e *LinearExpr, c float64)
	evaluateSolutionValue(r *Result) float64
}

// LinearExpr is a container for a linear expression.
type LinearExpr struct {
	varCoeffs []varCoeff
	offset    float64
}

type varCoeff struct {
	ind   VarIndex
	coeff float64
}

// NewLinearExpr creates a new empty LinearExpr.
func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

// NewConstant creates and returns a LinearExpr containing the constant `c`.
func NewConstant(c float64) *LinearExpr {
	return &LinearExpr{offset: c}
}

// Add adds the linear argument term to the LinearExpr and returns itself.
func (l *LinearExpr) Add(la LinearArgument) *LinearExpr {
	l.AddTerm(la, 1)
	return l
}

// AddConstant adds the constant to the LinearExpr and returns itself.
func (l *LinearExpr) AddConstant(c float64) *LinearExpr {
	l.offset += c
	return l
}

// AddTerm adds the linear argument term with the given coefficient to the
// LinearExpr and returns itself.
func (l *LinearExpr) AddTerm(la LinearArgument, coeff float64) *LinearExpr {
	la.addToLinearExpr(l, coeff)
	return l
}

// AddSum adds the sum of the linear arguments to the LinearExpr and returns
// itself.
func (l *LinearExpr) AddSum(las ...LinearArgument) *LinearExpr {
	for _, la := range las {
		l.Add(la)
	}
	return l
}

// AddWeightedSum adds the linear arguments with the corresponding coefficients
// to the LinearExpr and returns itself.
func (l *LinearExpr) AddWeightedSum(las []LinearArgument, coeffs []float64) *LinearExpr {
	if len(coeffs) != len(las) {
		log.Fatalf("las and coeffs must be the same length: %v != %v", len(las), len(coeffs))
	}
	for i, la := range las {
		l.AddTerm(la, coeffs[i])
	}
	return l
}

// Offset returns the constant part of the expression. For an expression built
// purely from constants this is its numeric value.
func (l *LinearExpr) Offset() float64 {
	return l.offset
}

func (l *LinearExpr) addToLinearExpr(e *LinearExpr, c float64) {
	for _, vc := range l.varCoeffs {
		e.varCoeffs = append(e.varCoeffs, varCoeff{ind: vc.ind, coeff: vc.coeff * c})
	}
	e.offset += l.offset * c
}

func (l *LinearExpr) evaluateSolutionValue(r *Result) float64 {
	result := l.offset
	for _, vc := range l.varCoeffs {
		result += r.Values[vc.ind] * vc.coeff
	}
	return result
}

// Var is a reference to a variable in the model.
type Var struct {
	ind VarIndex
	mb  *Builder
}

// Name returns the name of the variable.
func (v Var) Name() string {
	return v.mb.model.Variables[v.ind].Name
}

// Bounds returns the current bounds of the variable.
func (v Var) Bounds() Interval {
	return v.mb.model.Variables[v.ind].Bounds
}

// Index returns the index of the variable.
func (v Var) Index() VarIndex {
	return v.ind
}

// WithName sets the name of the variable.
func (v Var) WithName(s string) Var {
	v.mb.model.Variables[v.ind].Name = s
	return v
}

func (v Var) addToLinearExpr(e *LinearExpr, c float64) {
	e.varCoeffs = append(e.varCoeffs, varCoeff{ind: v.ind, coeff: c})
}

func (v Var) evaluateSolutionValue(r *Result) float64 {
	return r.Values[v.ind]
}

// Constraint is a reference to a constraint in the model.
type Constraint struct {
	ind ConstrIndex
	mb  *Builder
}

// WithName sets the name of the constraint.
func (c Constraint) WithName(s string) Constraint {
	c.mb.model.Constraints[c.ind].Name = s
	return c
}

// Name returns the name of the constraint.
func (c Constraint) Name() string {
	return c.mb.model.Constraints[c.ind].Name
}

// Index returns the index of the constraint.
func (c Constraint) Index() ConstrIndex {
	return c.ind
}

// Builder provides a wrapper for the linear Model under construction.
type Builder struct {
	model *Model
	// The first and only the first error is reported in Model.
	err error
}

// NewBuilder creates and returns a new model Builder.
func NewBuilder() *Builder {
	return &Builder{model: &Model{}}
}

// checkSameModelAndSetErrorf returns true if `mb` and `mb2` point to the same
// Builder. If false, an error with the error message `format` is set on `mb`
// if `mb.err` is nil.
func (mb *Builder) checkSameModelAndSetErrorf(mb2 *Builder, format string, a ...any) bool {
	if mb == mb2 {
		return true
	}
	var args = make([]any, len(a)+1)
	copy(args, a)
	args[len(a)] = ErrMixedModels
	err := fmt.Errorf(format+": %w", args...)
	log.Errorf("%v; use `-log_backtrace_at` flag to get the error stack", err)
	if mb.err == nil {
		mb.err = err
	}
	return false
}

// NewVar creates a new variable with the given bounds and type.
func (mb *Builder) NewVar(lb, ub float64, t VarType) Var {
	v := Var{ind: VarIndex(len(mb.model.Variables)), mb: mb}
	mb.model.Variables = append(mb.model.Variables, Variable{Bounds: Interval{lb, ub}, Type: t})
	return v
}

// NewNumVar creates a new continuous variable with the given bounds.
func (mb *Builder) NewNumVar(lb, ub float64) Var {
	return mb.NewVar(lb, ub, Continuous)
}

// SetBounds mutates the bounds of an existing variable in place. The
// constraint set is untouched, so the same model can be re-solved against
// many bound values.
func (mb *Builder) SetBounds(v Var, lb, ub float64) {
	if !mb.checkSameModelAndSetErrorf(v.mb, "invalid parameter Var %v passed to SetBounds", v.Index()) {
		return
	}
	mb.model.Variables[v.ind].Bounds = Interval{lb, ub}
}

// Fix sets both bounds of the variable to `value`, effectively turning it
// into a parameter of the optimization.
func (mb *Builder) Fix(v Var, value float64) {
	mb.SetBounds(v, value, value)
}

func (mb *Builder) appendConstraint(ct LinearConstraint) Constraint {
	i := ConstrIndex(len(mb.model.Constraints))
	mb.model.Constraints = append(mb.model.Constraints, ct)
	return Constraint{mb: mb, ind: i}
}

// addLinearConstraint adds a linear constraint that enforces the value of `le`
// to be within `bounds`. The constant offset of `le` is subtracted from both
// bounds.
func (mb *Builder) addLinearConstraint(le *LinearExpr, bounds Interval) Constraint {
	var varIndices []VarIndex
	var coeffs []float64
	for _, vc := range le.varCoeffs {
		varIndices = append(varIndices, vc.ind)
		coeffs = append(coeffs, vc.coeff)
	}

	return mb.appendConstraint(LinearConstraint{
		VarIndices: varIndices,
		Coeffs:     coeffs,
		Bounds:     bounds.Offset(-le.offset),
	})
}

// AddLinearConstraint adds the linear constraint `lb <= expr <= ub`.
func (mb *Builder) AddLinearConstraint(expr LinearArgument, lb, ub float64) Constraint {
	linExpr := NewLinearExpr().Add(expr)
	return mb.addLinearConstraint(linExpr, Interval{lb, ub})
}

// AddEquality adds the linear constraint `lhs == rhs`.
func (mb *Builder) AddEquality(lhs, rhs LinearArgument) Constraint {
	diff := NewLinearExpr().Add(lhs).AddTerm(rhs, -1)
	return mb.addLinearConstraint(diff, Interval{0, 0})
}

// AddLessOrEqual adds the linear constraint `lhs <= rhs`.
func (mb *Builder) AddLessOrEqual(lhs, rhs LinearArgument) Constraint {
	diff := NewLinearExpr().Add(lhs).AddTerm(rhs, -1)
	return mb.addLinearConstraint(diff, Interval{math.Inf(-1), 0})
}

// AddGreaterOrEqual adds the linear constraint `lhs >= rhs`.
func (mb *Builder) AddGreaterOrEqual(lhs, rhs LinearArgument) Constraint {
	diff := NewLinearExpr().Add(lhs).AddTerm(rhs, -1)
	return mb.addLinearConstraint(diff, Interval{0, math.Inf(1)})
}

// Minimize sets a linear minimization objective.
func (mb *Builder) Minimize(obj LinearArgument) {
	mb.setObjective(obj, false)
}

// Maximize sets a linear maximization objective.
func (mb *Builder) Maximize(obj LinearArgument) {
	mb.setObjective(obj, true)
}

func (mb *Builder) setObjective(obj LinearArgument, maximize bool) {
	o := NewLinearExpr().Add(obj)

	opb := Objective{Offset: o.offset, Maximize: maximize}
	for _, vc := range o.varCoeffs {
		opb.VarIndices = append(opb.VarIndices, vc.ind)
		opb.Coeffs = append(opb.Coeffs, vc.coeff)
	}
	mb.model.Objective = opb
}

// Model returns the built model. The model returned is a pointer to the model
// in the Builder: subsequent bound mutations through the Builder are visible
// on it, which is what allows the fix-and-resolve pattern.
//
// Model returns an error when invalid parameters have been used during model
// building (e.g. passing variables from other builders).
func (mb *Builder) Model() (*Model, error) {
	if mb.err != nil {
		return nil, mb.err
	}
	return mb.model, nil
}
