/*
Package storage provides the persistent index of runtime-created objects.

The staged config files are the source of truth; this index exists so the
node can answer "what runtime objects exist and where do their files live"
without re-reading every stage. Records are written only after an object's
file has been made durable, and ListMissingFiles reports records whose
backing file has disappeared, which is how orphaned index entries are found
after a crash or a manual cleanup.

BoltStore is the default implementation, a single bbolt database at
<dataDir>/vigil.db with one bucket for object records and one for package
records.
*/
package storage
