// Package blockcache provides a read-through cache over a volume image.
//
// The image is divided into fixed-size cache blocks that are fetched from the
// underlying [imageio.Accessor] the first time any byte in them is read, and
// served from memory afterwards. Cache block indices begin at 0 and are unrelated
// to the volume's own block size.

package blockcache

import (
	"fmt"
	"sync"

	"github.com/boljen/go-bitmap"
	"github.com/dargueta/rmxfs"
	"github.com/dargueta/rmxfs/file_systems/common/imageio"
)

// DefaultBlockSize is used when a cache is created with a block size of 0.
const DefaultBlockSize = 4096

// BlockCache is an [imageio.Accessor] that caches another accessor. It's safe
// for concurrent use.
type BlockCache struct {
	lock          sync.Mutex
	source        imageio.Accessor
	loadedBlocks  bitmap.Bitmap
	numLoaded     uint
	bytesPerBlock uint
	totalBlocks   uint
	data          []byte
}

// New creates a cache over `source` using cache blocks of `bytesPerBlock` bytes.
// The final block is shorter than the others if the image size isn't an exact
// multiple of the block size.
func New(source imageio.Accessor, bytesPerBlock uint) *BlockCache {
	if bytesPerBlock == 0 {
		bytesPerBlock = DefaultBlockSize
	}

	size := source.Size()
	totalBlocks := uint((size + uint64(bytesPerBlock) - 1) / uint64(bytesPerBlock))

	return &BlockCache{
		source:        source,
		loadedBlocks:  bitmap.NewSlice(int(totalBlocks)),
		bytesPerBlock: bytesPerBlock,
		totalBlocks:   totalBlocks,
		data:          make([]byte, size),
	}
}

// BytesPerBlock returns the size of a single cache block, in bytes.
func (cache *BlockCache) BytesPerBlock() uint {
	return cache.bytesPerBlock
}

// TotalBlocks returns the number of cache blocks covering the image.
func (cache *BlockCache) TotalBlocks() uint {
	return cache.totalBlocks
}

// LoadedBlocks returns the number of cache blocks fetched from the source so far.
func (cache *BlockCache) LoadedBlocks() uint {
	cache.lock.Lock()
	defer cache.lock.Unlock()
	return cache.numLoaded
}

// Size gives the size of the image, in bytes (not blocks!).
func (cache *BlockCache) Size() uint64 {
	return uint64(len(cache.data))
}

// LengthToNumBlocks gives the minimum number of cache blocks required to hold
// the given number of bytes.
func (cache *BlockCache) LengthToNumBlocks(size uint) uint {
	return (size + cache.bytesPerBlock - 1) / cache.bytesPerBlock
}

// loadBlockRange ensures all blocks in [first, last] are present in the cache.
// The caller must hold the lock.
func (cache *BlockCache) loadBlockRange(first, last uint) error {
	for blockIndex := first; blockIndex <= last; blockIndex++ {
		if cache.loadedBlocks.Get(int(blockIndex)) {
			continue
		}

		start := uint64(blockIndex) * uint64(cache.bytesPerBlock)
		end := start + uint64(cache.bytesPerBlock)
		if end > cache.Size() {
			end = cache.Size()
		}

		blockData, err := cache.source.ReadAt(start, uint32(end-start))
		if err != nil {
			return rmxfs.CastToDriverError(err).WithMessage(
				fmt.Sprintf("failed to load cache block %d", blockIndex))
		}

		copy(cache.data[start:end], blockData)
		cache.loadedBlocks.Set(int(blockIndex), true)
		cache.numLoaded++
	}
	return nil
}

// ReadAt implements [imageio.Accessor]. Out-of-range reads fail without
// touching the source.
func (cache *BlockCache) ReadAt(offset uint64, length uint32) ([]byte, error) {
	err := imageio.CheckBounds(offset, length, cache.Size())
	if err != nil {
		return nil, err
	}

	buffer := make([]byte, length)
	if length == 0 {
		return buffer, nil
	}

	end := offset + uint64(length)
	firstBlock := uint(offset / uint64(cache.bytesPerBlock))
	lastBlock := uint((end - 1) / uint64(cache.bytesPerBlock))

	cache.lock.Lock()
	defer cache.lock.Unlock()

	err = cache.loadBlockRange(firstBlock, lastBlock)
	if err != nil {
		return nil, err
	}

	copy(buffer, cache.data[offset:end])
	return buffer, nil
}

// LoadAll fetches every block not yet in the cache.
func (cache *BlockCache) LoadAll() error {
	if cache.totalBlocks == 0 {
		return nil
	}

	cache.lock.Lock()
	defer cache.lock.Unlock()
	return cache.loadBlockRange(0, cache.totalBlocks-1)
}
