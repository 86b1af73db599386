package gitrepo

// nextSequence returns the sequence number for the next item on branch.
// The cached counter is used only when the working tree agrees with it:
// an item file exists for the cached number and none for the one after.
// Any disagreement falls back to a full directory scan.
func (d *Driver) nextSequence(dir, branch string) (int, error) {
	if branch != "" {
		cache := d.loadSequenceCache(dir)
		if last, ok := cache[branch]; ok && last > 0 && hasItemFile(dir, last) && !hasItemFile(dir, last+1) {
			return last + 1, nil
		}
	}

	highest, err := scanMaxSequence(dir)
	if err != nil {
		return 0, err
	}

	return highest + 1, nil
}

// recordSequence stores seq as the last committed number on branch. The
// counter is only an accelerator, so failures are logged and dropped.
func (d *Driver) recordSequence(dir, branch string, seq int) {
	if branch == "" {
		return
	}

	cache := d.loadSequenceCache(dir)
	cache[branch] = seq
	if err := d.saveSequenceCache(dir, cache); err != nil {
		d.logger.Warn("failed to update sequence cache", "dir", dir, "branch", branch, "error", err)
	}
}

func (d *Driver) forgetSequence(dir, branch string) {
	cache := d.loadSequenceCache(dir)
	if _, ok := cache[branch]; !ok {
		return
	}

	delete(cache, branch)
	if err := d.saveSequenceCache(dir, cache); err != nil {
		d.logger.Warn("failed to update sequence cache", "dir", dir, "branch", branch, "error", err)
	}
}
