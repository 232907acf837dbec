package validate

import (
	"testing"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name     string
		document string
		data     string
		wantErr  bool
	}{
		{
			name:     "valid workload",
			document: "feedback-pipeline-workload",
			data: `document: feedback-pipeline-workload
version: 1
data:
  name: Web server
  description: Apache httpd
  maintainer: alice
  labels: [eln]
  packages: [httpd, mod_ssl]
  arch_packages:
    x86_64: [microcode_ctl]
  package_placeholders:
    new-tool:
      description: not packaged yet
      requires: [bash]
`,
		},
		{
			name:     "workload without maintainer",
			document: "feedback-pipeline-workload",
			data: `document: feedback-pipeline-workload
version: 1
data:
  name: Web server
  description: Apache httpd
  labels: [eln]
`,
			wantErr: true,
		},
		{
			name:     "valid repository",
			document: "feedback-pipeline-repository",
			data: `document: feedback-pipeline-repository
version: 2
data:
  name: Rawhide
  description: Fedora Rawhide
  maintainer: bob
  source:
    releasever: 40
    architectures: [x86_64, aarch64]
    repos:
      BaseOS:
        baseurl: https://example.org/$basearch/
        priority: 10
`,
		},
		{
			name:     "repository v1 rejected",
			document: "feedback-pipeline-repository",
			data: `document: feedback-pipeline-repository
version: 1
data:
  name: Rawhide
  description: Fedora Rawhide
  maintainer: bob
  source:
    releasever: 40
    architectures: [x86_64]
    repos: {}
`,
			wantErr: true,
		},
		{
			name:     "view missing repository",
			document: "feedback-pipeline-compose-view",
			data: `document: feedback-pipeline-compose-view
version: 1
data:
  name: ELN
  description: ELN view
  maintainer: carol
  labels: [eln]
`,
			wantErr: true,
		},
		{
			name:     "buildroot relations",
			document: "buildroot-binary-relations",
			data: `{"document_type": "buildroot-binary-relations", "version": "1",
 "data": {"view_id": "eln", "arch": "x86_64",
  "pkgs": {"gcc-13.2-1.x86_64": {"source_name": "gcc", "required_by": []}}}}`,
		},
		{
			name:     "unknown document",
			document: "feedback-pipeline-nothing",
			data:     "{}",
			wantErr:  true,
		},
		{
			name:     "not yaml",
			document: "feedback-pipeline-label",
			data:     "a: [",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocument(tt.document, []byte(tt.data))
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestHasSchema(t *testing.T) {
	if !HasSchema("feedback-pipeline-buildroot") {
		t.Fatal("expected buildroot schema")
	}
	if HasSchema("feedback-pipeline-repository-v1") {
		t.Fatal("unexpected schema")
	}
}
