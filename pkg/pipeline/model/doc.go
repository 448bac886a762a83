// Package model holds the types shared by the pipeline and its options: step
// descriptions, the step handle and the option hook interface.
package model
