package format

import "io/fs"

// FileUserReadWrite is for files that should only be readable by owner (rw-------).
// Used for log files. Rewritten candidate files keep the mode they had before redaction.
const FileUserReadWrite fs.FileMode = 0600
