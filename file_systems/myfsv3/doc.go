/*
Package myfsv3 implements version 3 of the MYFS on-disk format, a flat file
system with a single root directory.

A volume is laid out as follows, all offsets in bytes from the beginning of the
device:

	+--------+-------------------+-----------------------------------------+
	| header | inode slot map    | data blocks                             |
	| 5 B    | InodeCount B      | BlockCount * BytesPerBlock B            |
	+--------+-------------------+-----------------------------------------+

The header is the ASCII magic "MYFS" followed by the version byte 0x03. The slot
map has one ASCII byte per inode, '1' if the inode is in use and '0' if not.

Every data block begins with a four-byte cursor giving the number of payload
bytes in use, written as left-justified ASCII decimal padded with NULs. Files
are bump-allocated into the payload: each file's content is stored followed by
a single NUL terminator, and the cursor is advanced past it.

Block 0's payload holds the inode table, 32 bytes per inode:

	offset  size  field
	0       4     block index (uint32, little endian)
	4       1     type: 1 for directories, 0 for files
	5       3     (padding)
	8       4     content size, not counting the terminator (uint32)
	12      20    five addresses (int32); only the first is used

Block 1's payload holds the root directory, a packed array of 11-byte entries:
a NUL-padded name of up to 10 bytes and a one-byte inode number. The root inode
is always inode 0, and its first address is the absolute device offset of the
entry list. For every other inode the first address is relative to the start of
its block's payload.

Files are never deleted, and directories other than the root can be created but
can't hold anything.
*/

package myfsv3
