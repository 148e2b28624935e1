package rmxfs

// Mode bits used when reporting iRMX objects through POSIX-style interfaces.
const (
	S_IXOTH = 0o000001
	S_IWOTH = 0o000002
	S_IROTH = 0o000004
	S_IXGRP = 0o000010
	S_IWGRP = 0o000020
	S_IRGRP = 0o000040
	S_IXUSR = 0o000100
	S_IWUSR = 0o000200
	S_IRUSR = 0o000400
	S_IFDIR = 0o040000
	S_IFREG = 0o100000
	S_IFMT  = 0o170000
)

const S_IRWXO = S_IXOTH | S_IWOTH | S_IROTH
const S_IRWXG = S_IXGRP | S_IWGRP | S_IRGRP
const S_IRWXU = S_IXUSR | S_IWUSR | S_IRUSR

// S_IRALL grants read permission to everyone. The drivers are read-only, so
// this is the most any object is ever given.
const S_IRALL = S_IRUSR | S_IRGRP | S_IROTH
