/*
Package confcompile turns configuration text into live monitoring objects.

The compiler understands the object declaration language emitted by
pkg/confwriter:

	object Host "web01" {
		import "generic-host"
		address = "10.0.0.7"
		check_command = "hostalive"
		groups = [ "linux", "prod" ]
		vars = {
			os = "Linux"
		}
	}

Declarations are separated by blank lines. A declaration may carry the
ignore_on_error marker after its name, which changes how commit failures are
handled (see below).

# Pipeline

Text becomes live objects in four steps:

	CompileText ──▶ Unit ──▶ Evaluate ──▶ ConfigItems ──▶ Commit ──▶ Activate

CompileText parses the text into a Unit and reports syntax errors with their
line numbers as *CompileError. Evaluate resolves each declaration's type
against the type registry and produces ConfigItems, the candidate objects of
one activation attempt, collected in an ActivationContext.

Commit is where a candidate becomes real: references to other objects are
resolved (a service's host must exist, a comment's service must exist), the
object is registered, and its dependency edges are recorded in the graph. A
dangling reference or a name collision fails the commit.

Activation marks the committed objects active and publishes their creation on
the event broker, forwarding the origin of the change so it is not echoed
back to where it came from.

# ignore_on_error

An item declared with ignore_on_error that fails to commit is skipped
silently instead of failing the batch. The surrounding call still succeeds;
it just produces no object. This mirrors how replicated config is applied:
one peer's stale reference must not wedge the whole sync.

# Concurrency

CommitItems and ActivateItems run their items through a bounded work queue
(pkg/workqueue). Failures stay queued on the work queue for the caller to
drain and attribute to the right phase.

# See Also

  - pkg/confwriter - the emitter producing this language
  - pkg/runtimeconfig - the pipeline driving compile/commit/activate
  - pkg/workqueue - bounded parallel execution with error collection
*/
package confcompile
