package myfsv3

import "github.com/dargueta/myfs"

func (driver *Driver) FSStat() (myfs.FSStat, error) {
	stat := myfs.FSStat{
		BlockSize:     uint64(driver.geometry.PayloadSize()),
		TotalBlocks:   uint64(driver.geometry.BlockCount) - uint64(FirstAllocatableBlock),
		MaxNameLength: NameLength,
	}

	err := driver.view(func(v *volume) error {
		alloc, _, err := v.loadAllocator()
		if err != nil {
			return err
		}
		stat.Files = uint64(alloc.CountAllocated())
		stat.FilesFree = uint64(alloc.TotalUnits) - stat.Files

		for block := FirstAllocatableBlock; uint(block) < v.geometry.BlockCount; block++ {
			cursor, err := v.readCursor(block)
			if err != nil {
				return err
			}
			if cursor == 0 {
				stat.BlocksFree++
			}
			stat.BytesFree += uint64(v.geometry.PayloadSize() - cursor)
		}
		return nil
	})
	return stat, err
}
