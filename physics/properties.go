// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package physics implements the rigid body world: force generators,
// the integration and sleeping pipeline, and the coupling between the
// collision world and the constraint solver.
package physics

import (
	"os"

	"gopkg.in/yaml.v3"
)

// WorldProperties enumerates the tunables of a rigid body world.
type WorldProperties struct {
	MotionBias          float32 `yaml:"motionBias"`
	SleepEpsilon        float32 `yaml:"sleepEpsilon"`
	CoarseEpsilon       float32 `yaml:"coarseEpsilon"`
	ContactSeparation   float32 `yaml:"contactSeparation"`
	ContactPrecision    float32 `yaml:"contactPrecision"`
	RaycastPrecision    float32 `yaml:"raycastPrecision"`
	MinFDifference      float32 `yaml:"minFDifference"`
	MaxEPAIterations    int     `yaml:"maxEPAIterations"`
	MaxRayIterations    int     `yaml:"maxRayIterations"`
	MaxSolverIterations int     `yaml:"maxSolverIterations"`
	MaxManifolds        int     `yaml:"maxManifolds"`
	ContactBeta         float32 `yaml:"contactBeta"`
	ContactSlop         float32 `yaml:"contactSlop"`
	FrictionCoefficient float32 `yaml:"frictionCoefficient"`
}

// DefaultWorldProperties returns the default world tunables.
func DefaultWorldProperties() WorldProperties {

	return WorldProperties{
		MotionBias:          0.5,
		SleepEpsilon:        0.001,
		CoarseEpsilon:       0.0001,
		ContactSeparation:   0.00001,
		ContactPrecision:    0.0000001,
		RaycastPrecision:    0.0000001,
		MinFDifference:      0.00001,
		MaxEPAIterations:    36,
		MaxRayIterations:    32,
		MaxSolverIterations: 10,
		MaxManifolds:        128,
		ContactBeta:         0.2,
		ContactSlop:         0.0005,
		FrictionCoefficient: 0.65,
	}
}

// withDefaults replaces the zero fields of the properties with the
// default values.
func (p WorldProperties) withDefaults() WorldProperties {

	defaults := DefaultWorldProperties()
	if p.MotionBias == 0 {
		p.MotionBias = defaults.MotionBias
	}
	if p.SleepEpsilon == 0 {
		p.SleepEpsilon = defaults.SleepEpsilon
	}
	if p.CoarseEpsilon == 0 {
		p.CoarseEpsilon = defaults.CoarseEpsilon
	}
	if p.ContactSeparation == 0 {
		p.ContactSeparation = defaults.ContactSeparation
	}
	if p.ContactPrecision == 0 {
		p.ContactPrecision = defaults.ContactPrecision
	}
	if p.RaycastPrecision == 0 {
		p.RaycastPrecision = defaults.RaycastPrecision
	}
	if p.MinFDifference == 0 {
		p.MinFDifference = defaults.MinFDifference
	}
	if p.MaxEPAIterations == 0 {
		p.MaxEPAIterations = defaults.MaxEPAIterations
	}
	if p.MaxRayIterations == 0 {
		p.MaxRayIterations = defaults.MaxRayIterations
	}
	if p.MaxSolverIterations == 0 {
		p.MaxSolverIterations = defaults.MaxSolverIterations
	}
	if p.MaxManifolds == 0 {
		p.MaxManifolds = defaults.MaxManifolds
	}
	if p.ContactBeta == 0 {
		p.ContactBeta = defaults.ContactBeta
	}
	if p.ContactSlop == 0 {
		p.ContactSlop = defaults.ContactSlop
	}
	if p.FrictionCoefficient == 0 {
		p.FrictionCoefficient = defaults.FrictionCoefficient
	}
	return p
}

// LoadWorldProperties reads world properties from a YAML file. Fields
// missing from the file keep their default values.
func LoadWorldProperties(path string) (WorldProperties, error) {

	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultWorldProperties(), err
	}

	var properties WorldProperties
	if err := yaml.Unmarshal(data, &properties); err != nil {
		return DefaultWorldProperties(), err
	}
	return properties.withDefaults(), nil
}
