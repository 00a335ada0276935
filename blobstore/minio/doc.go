// Package minio stores run artifacts in MinIO or any other S3-compatible
// service (Ceph, Garage, SeaweedFS) through the MinIO client.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "expression", "runs/")
//
// Connect builds the client from the MINIO_ROOT_USER/MINIO_ACCESS_KEY
// environment instead.
package minio
