package filetransfer

import "golang.org/x/sys/unix"

// marginFactor is the safety margin applied to the requested size before
// comparing against free space, matching verifica_espaco_disponivel's 1.1x.
const marginFactor = 1.1

// HasSpace reports whether dir's filesystem has at least size*1.1 bytes
// free, mirroring the original's statvfs-based check.
func HasSpace(dir string, size uint64) (bool, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(dir, &st); err != nil {
		return false, err
	}
	free := uint64(st.Bsize) * st.Bavail
	needed := uint64(float64(size) * marginFactor)
	return free >= needed, nil
}
