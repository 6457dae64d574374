package downloader

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cms-egamma/egdqm/pkg/dqm"
	"go.uber.org/zap"
)

// DefaultBaseFolder is the server folder holding tag-and-probe efficiencies.
const DefaultBaseFolder = "/HLT/EGM/TagAndProbeEffs"

// DefaultPaths lists trigger paths whose folders are downloaded.
var DefaultPaths = []string{
	"HLT_Ele32_WPTight_Gsf",
	"HLT_DoubleEle25_CaloIdL_MW",
	"HLT_Ele23_Ele12_CaloIdL_TrackIdL_IsoVL",
	"HLT_Ele115_CaloIdVT_GsfTrkIdT",
}

// DefaultExclusions are substrings of histogram names that are never
// downloaded: HEP17 and HEM17 are special HCAL sectors.
var DefaultExclusions = []string{"HEP17", "HEM17"}

// fetchRun collects the run's histograms from every whitelisted trigger
// path folder of the base folder.
func (d *Downloader) fetchRun(ctx context.Context, dataset, run string) (*dqm.Batch, error) {
	l, err := d.fetcher.Folder(ctx, run, dataset, d.baseFolder)
	if err != nil {
		return nil, err
	}

	base := dqm.RunPath(dataset, run)

	b := new(dqm.Batch)
	b.Mkdir(base)

	for _, item := range l.Contents {
		if !item.IsSubdir() {
			continue
		}

		if _, ok := d.paths[item.Dir()]; !ok {
			d.log.Debug("trigger path is not whitelisted, skip",
				zap.String("run", run),
				zap.String("path", item.Dir()))
			continue
		}

		out := base.Join(item.Dir())
		b.Mkdir(out)

		err = d.fetchFolder(ctx, b, run, dataset, d.baseFolder+"/"+item.Dir(), out)
		if err != nil {
			return nil, err
		}
	}

	return b, nil
}

// fetchFolder adds recognized histograms of the server folder to the batch
// under out.
func (d *Downloader) fetchFolder(ctx context.Context, b *dqm.Batch, run, dataset, folder string, out dqm.Path) error {
	l, err := d.fetcher.Folder(ctx, run, dataset, folder)
	if err != nil {
		return err
	}

	for _, item := range l.Contents {
		if !item.IsHistogram() {
			continue
		}

		name := item.Name()
		if d.excluded(name) {
			continue
		}

		payload, err := hex.DecodeString(item.Encoded())
		if err != nil {
			return fmt.Errorf("decode histogram %s of folder %s: %w", name, folder, err)
		}

		kind := dqm.Kind(item.Properties.Type)
		if !kind.Recognized() {
			d.log.Debug("unsupported histogram type, skip",
				zap.String("name", name),
				zap.String("type", string(kind)))
			continue
		}

		h, err := dqm.NewHistogram(name, kind, payload)
		if err != nil {
			return fmt.Errorf("decode folder %s: %w", folder, err)
		}

		b.Put(out, h)
	}

	return nil
}

func (d *Downloader) excluded(name string) bool {
	for i := range d.exclusions {
		if strings.Contains(name, d.exclusions[i]) {
			return true
		}
	}

	return false
}
