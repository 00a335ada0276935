// Package dirt finds DiRT candidate index genes.
//
// For a target gene, every other gene in an expression matrix is scored by the
// normalized dispersion (NDIV) of the target/candidate expression ratios over
// the control samples: the sample standard deviation of the ratios divided by
// their mean. Genes whose ratio to the target stays constant across controls
// score close to zero and make good reference genes for DiRT normalization.
//
// # Quick Start
//
//	m, _ := table.ReadMatrix(f, table.ReadOptions{})
//	finder, _ := dirt.New(m, dirt.WithTopN(10))
//
//	cands, _ := finder.FindTopCandidates(ctx, 0)
//	for _, c := range cands {
//	    fmt.Println(c.ID(), c.NDIV)
//	}
//
// # Runs
//
// Run scores a whole target set. Targets are split into contiguous blocks that
// are computed concurrently and handed to an engine.Sink:
//
//	col := engine.NewCollector()
//	stats, _ := finder.Run(ctx, targets.All(m.Rows()), col)
//	records := col.Records() // block order, deterministic
//
// engine.StoreSink writes each block to a blobstore (local, S3, MinIO) and
// publishes a manifest; manifest.Merge concatenates the blocks afterwards.
//
// # Degenerate scores
//
// A candidate whose NDIV is NaN or ±Inf is still emitted and sorts after all
// finite scores. Such candidates are counted by the MetricsCollector and
// logged at warn level.
package dirt
