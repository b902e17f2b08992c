package runtimeconfig

import "fmt"

// PolicyError reports a request the pipeline refuses by policy: deleting an
// object outside the reserved runtime package, or deleting an object with
// live dependents without cascade.
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string {
	return e.Reason
}

// ValidationError reports an attribute that failed validation against the
// target type's metadata.
type ValidationError struct {
	Attribute string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Attribute)
}

// PathError reports a failed object path derivation, typically an overlong
// name on a type outside the truncation-exempt set.
type PathError struct {
	Type     string
	FullName string
	Reason   string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("cannot derive config path for %s '%s': %s", e.Type, e.FullName, e.Reason)
}

// CommitError reports that registration of a new object was rejected
type CommitError struct {
	FullName string
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("failed to commit config item '%s'", e.FullName)
}

// ActivationError reports that activation of a new object failed
type ActivationError struct {
	FullName string
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("failed to activate config object '%s'", e.FullName)
}

// Diagnostics accumulates the human-readable errors and the richer detail
// strings of one pipeline call. All pipeline failures except a package
// repair failure are recorded here before the call returns.
type Diagnostics struct {
	Errors  []string
	Details []string
}

// Add records an error summary with a detail string
func (d *Diagnostics) Add(summary, detail string) {
	if d == nil {
		return
	}
	d.Errors = append(d.Errors, summary)
	d.Details = append(d.Details, detail)
}

// AddError records an error as both summary and detail
func (d *Diagnostics) AddError(err error) {
	d.Add(err.Error(), fmt.Sprintf("%+v", err))
}
