// Package gait turns time-indexed biomechanical recordings into phase-normalized cycles.
//
// A recording (Trial) is first segmented into gait cycles from its contact-force
// channel: every swing-to-stance transition is a heel strike and consecutive heel
// strikes bound one cycle. Cycles whose duration falls outside [0.5s, 2.5s] are
// rejected as partial or corrupted strides.
//
// Each accepted cycle is then resampled onto the canonical 150-point phase grid
// spanning 0..100 %. Resampling derives angular velocity and acceleration from every
// angle channel, fills contralateral channels for gait tasks by shifting the
// ipsilateral arrays by half a cycle, and computes thigh, shank and foot segment
// angles through the pelvis -> thigh -> shank -> foot kinematic chain.
//
// All functions are pure: they never mutate their inputs and can run concurrently on
// different trials.
package gait
