// metadata.go -- the archive reader: header parsing, password
// verification, whole-body decryption and entry-table scanning.
package hssp

import (
	"bytes"
	"io"
)

// ReadMetadata parses an archive's header and entry table. It always
// parses from the start of r, whatever r's current position.
//
//   - If the archive is plaintext, entries are scanned directly from
//     r and Files/Offset values are absolute positions within r.
//   - If it's encrypted and password is nil, Metadata is returned with
//     an Encryption descriptor whose Hash is all-zero and no Files.
//   - If it's encrypted and password is wrong, Metadata is returned
//     with Encryption.Hash set (for diagnosis) but not matching
//     HashExpected, and no Files. This is not an error.
//   - If the password is correct, the whole remaining stream is
//     decrypted into memory and entries are scanned from that buffer;
//     Offset values are then positions within Encryption.Decrypted.
func ReadMetadata(r io.ReadSeeker, password *string) (*Metadata, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	hdr, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	encrypted := !(allZero(hdr.keyHash) && allZero(hdr.iv))
	mainFile := mainFromRaw(hdr.mainRaw)

	if !encrypted {
		end, err := size(r)
		if err != nil {
			return nil, err
		}
		files, err := scanEntries(r, end, hdr.fileCount)
		if err != nil {
			return nil, err
		}
		return &Metadata{
			Version:  hdr.version,
			Checksum: hdr.checksum,
			Files:    files,
			MainFile: mainFile,
		}, nil
	}

	var hashExpected [32]byte
	copy(hashExpected[:], hdr.keyHash)
	var iv [16]byte
	copy(iv[:], hdr.iv)

	if password == nil {
		return &Metadata{
			Version:  hdr.version,
			Checksum: hdr.checksum,
			Encryption: &Encryption{
				HashExpected: hashExpected,
				IV:           iv,
			},
			MainFile: mainFile,
		}, nil
	}

	key := deriveKey(*password)
	computed := keyVerificationHash(key)

	if computed != hashExpected {
		return &Metadata{
			Version:  hdr.version,
			Checksum: hdr.checksum,
			Encryption: &Encryption{
				Hash:         computed,
				HashExpected: hashExpected,
				IV:           iv,
			},
			MainFile: mainFile,
		}, nil
	}

	cipherBytes, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	plain, err := decryptBody(key, iv, cipherBytes)
	if err != nil {
		return nil, err
	}

	body := bytes.NewReader(plain)
	files, err := scanEntries(body, int64(len(plain)), hdr.fileCount)
	if err != nil {
		return nil, err
	}

	return &Metadata{
		Version:  hdr.version,
		Checksum: hdr.checksum,
		Encryption: &Encryption{
			Hash:         computed,
			HashExpected: hashExpected,
			IV:           iv,
			Decrypted:    plain,
		},
		Files:    files,
		MainFile: mainFile,
	}, nil
}

func scanEntries(r io.ReadSeeker, end int64, count uint32) ([]File, error) {
	files := make([]File, 0, count)
	for i := uint32(0); i < count; i++ {
		f, err := readEntry(r, end)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
