package language

import (
	"reflect"
	"testing"
)

func Test_ExtractSpecifiers_AllForms(t *testing.T) {
	src := `import React, { useState } from 'react';
import Button from "@/components/Button";
import * as utils from './lib/utils';
import './styles.css';
import type { Props } from '../types';
import {
  Card,
  CardHeader,
} from '@/components/Card';
export { Badge } from '@/components/Badge';
export * from './icons';
const dayjs = require('dayjs');
const Chart = lazy(() => import('@/components/Chart'));
`

	want := []string{
		"react",
		"@/components/Button",
		"./lib/utils",
		"./styles.css",
		"../types",
		"@/components/Card",
		"@/components/Badge",
		"./icons",
		"dayjs",
		"@/components/Chart",
	}

	got := ExtractSpecifiers(src)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractSpecifiers mismatch\n got: %q\nwant: %q", got, want)
	}
}

func Test_ExtractSpecifiers_Deduplicates(t *testing.T) {
	src := `import { a } from '@/lib/a';
import { b } from '@/lib/a';
`
	got := ExtractSpecifiers(src)
	if len(got) != 1 || got[0] != "@/lib/a" {
		t.Errorf("expected single @/lib/a, got %q", got)
	}
}

func Test_ExtractSpecifiers_IgnoresComments(t *testing.T) {
	src := `// import Old from '@/components/Old';
/* import Gone from '@/components/Gone'; */
/*
 * import AlsoGone from './AlsoGone';
 */
import Live from '@/components/Live';
const url = "http://example.com"; // trailing comment
`
	got := ExtractSpecifiers(src)
	if len(got) != 1 || got[0] != "@/components/Live" {
		t.Errorf("expected only @/components/Live, got %q", got)
	}
}

func Test_ImportExtractor_NonScript(t *testing.T) {
	var extractor ImportExtractor

	if got := extractor.Specifiers("/styles.css", "@import './base.css';"); got != nil {
		t.Errorf("expected no specifiers for css, got %q", got)
	}
	if got := extractor.Specifiers("/App.jsx", "import X from './X';"); len(got) != 1 {
		t.Errorf("expected one specifier for jsx, got %q", got)
	}
}

func Test_HasDefaultExport(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{"function", "export default function App() { return null }", true},
		{"identifier", "function App() {}\nexport default App;", true},
		{"named as default", "const App = () => null;\nexport { App as default };", true},
		{"named only", "export function App() {}", false},
		{"commented out", "// export default App\nexport const x = 1;", false},
		{"inside double quotes", "const label = \"export default\";\nexport function App() {}", false},
		{"inside template literal", "const doc = `\nexport default App\n`;\nexport function App() {}", false},
		{"after a string with an escaped quote", "const s = 'it\\'s';\nexport default App;", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasDefaultExport(tt.src); got != tt.want {
				t.Errorf("HasDefaultExport = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_StripComments_KeepsStrings(t *testing.T) {
	src := "const a = '// not a comment'; // trailing\nconst b = \"/* nope */\";"
	got := StripComments(src)
	want := "const a = '// not a comment'; \nconst b = \"/* nope */\";"
	if got != want {
		t.Errorf("StripComments mismatch\n got: %q\nwant: %q", got, want)
	}
}

func Test_ExtractSpecifiers_ApostropheInJSXText(t *testing.T) {
	src := `import Button from '@/components/Button';

export default function App() {
  return (
    <div>
      <p>Don't panic</p>
      <Button />
    </div>
  );
}
// import Old from './Old';
const docs = "https://example.com/guide";
import Footer from './Footer';
`
	want := []string{"@/components/Button", "./Footer"}

	got := ExtractSpecifiers(src)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractSpecifiers mismatch\n got: %q\nwant: %q", got, want)
	}
}

func Test_StripComments_QuotesEndAtNewline(t *testing.T) {
	src := "<p>Don't stop</p>\n// gone\nconst t = `a\n// kept`;"
	got := StripComments(src)
	want := "<p>Don't stop</p>\n\nconst t = `a\n// kept`;"
	if got != want {
		t.Errorf("StripComments mismatch\n got: %q\nwant: %q", got, want)
	}
}
