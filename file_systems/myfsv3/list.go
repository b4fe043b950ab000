package myfsv3

import "github.com/dargueta/myfs"

// ListDir lists the root directory in the order entries were created. `path` is
// ignored since the root is the only directory that can hold anything.
func (driver *Driver) ListDir(path string) ([]myfs.DirectoryEntry, error) {
	var entries []myfs.DirectoryEntry

	err := driver.view(func(v *volume) error {
		root, err := v.readRootInode()
		if err != nil {
			return err
		}

		dirents, err := v.readDirents(root)
		if err != nil {
			return err
		}

		entries = make([]myfs.DirectoryEntry, 0, len(dirents))
		for _, dirent := range dirents {
			inode, err := v.readInode(Inumber(dirent.Inumber))
			if err != nil {
				return err
			}
			entries = append(entries, myfs.DirectoryEntry{
				EntryName:   dirent.NameString(),
				IsDirectory: inode.IsDir(),
				FileSize:    int64(inode.Size),
				Inumber:     uint(dirent.Inumber),
			})
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return entries, nil
}
